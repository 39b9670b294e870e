package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"yt-audio/internal/buffer"
	"yt-audio/internal/platform"
)

// readSize is the ffmpeg stdout read size.
const readSize = 16384

// FFmpeg implements Decoder by running ffmpeg and reading raw s16le PCM from its stdout.
type FFmpeg struct {
	config Config
	logger *slog.Logger
}

// NewFFmpeg creates a new FFmpeg decoder with the given configuration.
func NewFFmpeg(config Config, logger *slog.Logger) *FFmpeg {
	if config.Binary == "" {
		config.Binary = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpeg{config: config, logger: logger.With("decoder", "ffmpeg")}
}

// NewDefaultFFmpeg creates a decoder with default configuration.
func NewDefaultFFmpeg() *FFmpeg {
	return NewFFmpeg(DefaultConfig(), nil)
}

// Name returns the decoder implementation name.
func (d *FFmpeg) Name() string {
	return "ffmpeg"
}

// Open starts ffmpeg seeked to offset and returns the decoded stream.
func (d *FFmpeg) Open(ctx context.Context, src *platform.Source, offset time.Duration) (Stream, error) {
	if src == nil || src.StreamURL == "" {
		return nil, errors.New("no stream URL")
	}

	ctx, cancel := context.WithCancel(ctx)

	args := d.buildArgs(src.StreamURL, offset)
	cmd := exec.CommandContext(ctx, d.config.Binary, args...)

	s := &ffmpegStream{
		cmd:    cmd,
		cancel: cancel,
		exited: make(chan struct{}),
		logger: d.logger,
	}
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	d.logger.Debug("ffmpeg started", "pid", cmd.Process.Pid, "offset", offset)

	chunks := make(chan []byte, 10)
	go s.readOutput(ctx, stdout, chunks)

	pb := buffer.NewPrebuffer(buffer.Config{
		ByteRate:  d.config.ByteRate(),
		Prebuffer: d.config.Prebuffer,
		MaxBuffer: d.config.MaxBuffer,
	})
	s.PCMStreamer = NewPCMStreamer(d.config.Format(), pb.Start(ctx, chunks), s.exitErr)

	return s, nil
}

// buildArgs constructs the ffmpeg command arguments. The offset is applied
// as an input option so ffmpeg seeks in the source instead of decoding and
// discarding everything before it.
func (d *FFmpeg) buildArgs(streamURL string, offset time.Duration) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
	}

	// Reconnect support for network streams
	if strings.HasPrefix(streamURL, "http://") || strings.HasPrefix(streamURL, "https://") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}

	if offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64))
	}

	args = append(args,
		"-i", streamURL,
		"-vn",
		"-ac", strconv.Itoa(d.config.Channels),
		"-ar", strconv.Itoa(d.config.SampleRate),
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"pipe:1",
	)
	return args
}

// ffmpegStream is a running ffmpeg process exposed as a decoder.Stream.
type ffmpegStream struct {
	*PCMStreamer

	cmd    *exec.Cmd
	cancel context.CancelFunc
	stderr bytes.Buffer
	exited chan struct{}
	logger *slog.Logger

	mu        sync.Mutex
	err       error
	closeOnce sync.Once
}

// readOutput reads from ffmpeg stdout and sends chunks to out until EOF or cancellation.
func (s *ffmpegStream) readOutput(ctx context.Context, stdout io.Reader, out chan<- []byte) {
	defer close(s.exited)
	defer close(out)

	buf := make([]byte, readSize)
	total := 0

	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			total += n
			select {
			case out <- chunk:
			case <-ctx.Done():
				s.wait(ctx)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.setErr(fmt.Errorf("read error: %w", err))
			}
			break
		}
	}

	s.wait(ctx)
	s.logger.Debug("ffmpeg stream ended", "bytes", total)
}

func (s *ffmpegStream) wait(ctx context.Context) {
	err := s.cmd.Wait()
	if err != nil && ctx.Err() == nil {
		s.setErr(fmt.Errorf("ffmpeg exited: %w: %s", err, strings.TrimSpace(s.stderr.String())))
	}
}

func (s *ffmpegStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *ffmpegStream) exitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops ffmpeg and waits for the reader to finish.
func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.exited
	})
	return nil
}
