package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"
)

// oto allows a single context per process. Sinks share it but each gets its
// own oto.Player, so players stay independent.
var (
	otoMu     sync.Mutex
	otoCtx    *oto.Context
	otoFormat beep.Format
)

func otoContext(format beep.Format, bufferSize time.Duration) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if err := checkOtoFormat(otoFormat, format); err != nil {
			return nil, err
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(format.SampleRate),
		ChannelCount: format.NumChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	otoCtx = ctx
	otoFormat = format
	return otoCtx, nil
}

// checkOtoFormat reports whether a stream in format want can share a context
// created for have.
func checkOtoFormat(have, want beep.Format) error {
	if want.SampleRate != have.SampleRate || want.NumChannels != have.NumChannels {
		return fmt.Errorf("%w: oto context is %d Hz/%d ch, stream is %d Hz/%d ch",
			ErrFormatMismatch, have.SampleRate, have.NumChannels, want.SampleRate, want.NumChannels)
	}
	return nil
}

// Oto plays through the platform audio API via ebitengine/oto.
//
// All sinks share one process-wide context, fixed to the format of the first
// sink opened. Opening a sink in any other format fails with
// ErrFormatMismatch; use the ffmpeg or portaudio backend to mix formats.
type Oto struct {
	config Config
	logger *slog.Logger
}

// NewOto returns an oto Device. No audio context is created until Open.
func NewOto(cfg Config, logger *slog.Logger) *Oto {
	return &Oto{config: cfg, logger: logger.With("output", "oto")}
}

func (o *Oto) Name() string { return "oto" }

// Open creates a new oto player fed through a pipe.
func (o *Oto) Open(format beep.Format) (Sink, error) {
	ctx, err := otoContext(format, o.config.BufferSize)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.Play()

	o.logger.Debug("sink opened", "rate", format.SampleRate, "channels", format.NumChannels)

	return &otoSink{
		player:   player,
		reader:   pr,
		writer:   pw,
		channels: format.NumChannels,
	}, nil
}

type otoSink struct {
	player   *oto.Player
	reader   *io.PipeReader
	writer   *io.PipeWriter
	channels int
	buf      []byte
	closed   bool
}

func (s *otoSink) Write(samples [][2]float64) error {
	if err := s.player.Err(); err != nil {
		return err
	}
	s.buf = encodeS16LE(s.buf[:0], samples, s.channels)
	_, err := s.writer.Write(s.buf)
	return err
}

func (s *otoSink) Drain(ctx context.Context) error {
	// EOF on the pipe lets the player finish what it has buffered.
	_ = s.writer.Close()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for s.player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return s.player.Err()
}

func (s *otoSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.writer.CloseWithError(io.ErrClosedPipe)
	err := s.player.Close()
	_ = s.reader.Close()
	return err
}
