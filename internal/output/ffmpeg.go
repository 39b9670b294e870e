package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gopxl/beep/v2"
)

// FFmpeg plays by piping PCM into an ffmpeg process that writes to the
// system audio output (PulseAudio on Linux, AudioToolbox on macOS).
type FFmpeg struct {
	config Config
	goos   string
	logger *slog.Logger
}

// NewFFmpeg returns a Device that pipes PCM into an ffmpeg child process.
func NewFFmpeg(cfg Config, logger *slog.Logger) *FFmpeg {
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	return &FFmpeg{config: cfg, goos: runtime.GOOS, logger: logger.With("output", "ffmpeg")}
}

func (f *FFmpeg) Name() string { return "ffmpeg" }

// Open starts one ffmpeg process for the sink.
func (f *FFmpeg) Open(format beep.Format) (Sink, error) {
	args, err := f.buildArgs(format)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(f.config.FFmpegBinary, args...)
	s := &ffmpegSink{cmd: cmd, channels: format.NumChannels, exited: make(chan struct{})}
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe failed: %w", err)
	}
	s.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed to start: %w", err)
	}

	f.logger.Debug("ffmpeg output running", "pid", cmd.Process.Pid, "device", f.config.Device)

	go func() {
		s.waitErr = cmd.Wait()
		close(s.exited)
	}()

	return s, nil
}

// buildArgs creates the ffmpeg arguments for the current OS.
func (f *FFmpeg) buildArgs(format beep.Format) ([]string, error) {
	device := f.config.Device
	if device == "" {
		device = "default"
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(int(format.SampleRate)),
		"-ac", strconv.Itoa(format.NumChannels),
		"-i", "pipe:0",
	}

	switch f.goos {
	case "linux":
		return append(args, "-f", "pulse", device), nil
	case "darwin":
		return append(args, "-f", "audiotoolbox", device), nil
	default:
		return nil, fmt.Errorf("ffmpeg output on %s: %w", f.goos, ErrBackendUnavailable)
	}
}

type ffmpegSink struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	channels int
	buf      []byte

	exited    chan struct{}
	waitErr   error
	closeOnce sync.Once
}

func (s *ffmpegSink) Write(samples [][2]float64) error {
	select {
	case <-s.exited:
		if err := s.exitErr(); err != nil {
			return err
		}
		return errors.New("ffmpeg output exited")
	default:
	}
	s.buf = encodeS16LE(s.buf[:0], samples, s.channels)
	if _, err := s.stdin.Write(s.buf); err != nil {
		return fmt.Errorf("ffmpeg output: %w", err)
	}
	return nil
}

func (s *ffmpegSink) Drain(ctx context.Context) error {
	_ = s.stdin.Close()
	select {
	case <-s.exited:
		return s.exitErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ffmpegSink) Close() error {
	s.closeOnce.Do(func() {
		_ = s.stdin.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.exited
	})
	return nil
}

func (s *ffmpegSink) exitErr() error {
	if s.waitErr == nil {
		return nil
	}
	return fmt.Errorf("ffmpeg output exited: %w: %s", s.waitErr, strings.TrimSpace(s.stderr.String()))
}
