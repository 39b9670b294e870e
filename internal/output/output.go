// Package output writes PCM frames to the local sound output.
//
// A Device hands out one Sink per playback session. Sinks are never shared
// between sessions or players; closing a sink releases its device handle.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gopxl/beep/v2"
)

// ErrBackendUnavailable is returned when a backend was not compiled in or
// is not supported on this platform.
var ErrBackendUnavailable = errors.New("audio backend unavailable")

// ErrFormatMismatch is returned by a backend that cannot open a sink in the
// requested format next to sinks it already has.
var ErrFormatMismatch = errors.New("audio format mismatch")

// Sink is an open audio output handle.
type Sink interface {
	// Write queues samples for playback, blocking while the device buffer is full.
	Write(samples [][2]float64) error

	// Drain blocks until all written samples have been played or ctx is done.
	Drain(ctx context.Context) error

	// Close stops output immediately and releases the handle.
	Close() error
}

// Device opens sinks on an audio backend.
type Device interface {
	Open(format beep.Format) (Sink, error)

	// Name returns the backend name (e.g., "oto")
	Name() string
}

// Config holds output configuration.
type Config struct {
	Backend      string        // "oto" (default), "portaudio" or "ffmpeg"
	Device       string        // Backend specific device name (ffmpeg: pulse sink)
	BufferSize   time.Duration // Device buffer (default: 100ms)
	FFmpegBinary string        // ffmpeg executable for the ffmpeg backend
}

// DefaultConfig returns the default output configuration.
func DefaultConfig() Config {
	return Config{
		Backend:      "oto",
		Device:       "default",
		BufferSize:   100 * time.Millisecond,
		FFmpegBinary: "ffmpeg",
	}
}

// New returns the Device for the configured backend.
func New(cfg Config, logger *slog.Logger) (Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Backend {
	case "", "oto":
		return NewOto(cfg, logger), nil
	case "portaudio":
		return NewPortAudio(cfg, logger), nil
	case "ffmpeg":
		return NewFFmpeg(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown output backend %q", cfg.Backend)
	}
}

// drainWithin runs stop, which blocks until queued audio has played, and
// calls abort if ctx is done first. It returns only after stop has returned.
func drainWithin(ctx context.Context, stop, abort func() error) error {
	done := make(chan error, 1)
	go func() { done <- stop() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		aerr := abort()
		<-done
		return errors.Join(ctx.Err(), aerr)
	}
}

// encodeS16LE appends samples as interleaved signed 16-bit little endian PCM.
func encodeS16LE(dst []byte, samples [][2]float64, channels int) []byte {
	for _, s := range samples {
		for c := 0; c < channels && c < 2; c++ {
			v := int16(clamp(s[c]) * 32767) //nolint:gosec // clamped
			dst = append(dst, byte(v), byte(v>>8))
		}
	}
	return dst
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
