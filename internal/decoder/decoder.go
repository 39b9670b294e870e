// Package decoder turns a resolved audio stream into PCM frames.
// The ffmpeg implementation decodes any container ffmpeg understands and
// seeks on the input side, so the first frame is at the requested offset.
package decoder

import (
	"context"
	"time"

	"github.com/gopxl/beep/v2"

	"yt-audio/internal/platform"
)

// Config holds decoding configuration.
type Config struct {
	Binary     string        // ffmpeg executable (default: "ffmpeg")
	SampleRate int           // Output sample rate in Hz (default: 48000)
	Channels   int           // Output channels, 1 or 2 (default: 2)
	Prebuffer  time.Duration // Audio queued before the first frame is released
	MaxBuffer  time.Duration // Read-ahead limit
}

// DefaultConfig returns the default decoding configuration.
func DefaultConfig() Config {
	return Config{
		Binary:     "ffmpeg",
		SampleRate: 48000,
		Channels:   2,
		Prebuffer:  200 * time.Millisecond,
		MaxBuffer:  2 * time.Second,
	}
}

// Format returns the PCM format produced with this configuration (s16le).
func (c Config) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(c.SampleRate),
		NumChannels: c.Channels,
		Precision:   2,
	}
}

// ByteRate returns the number of PCM bytes per second of audio.
func (c Config) ByteRate() int {
	return c.SampleRate * c.Channels * 2
}

// Stream is a decoded audio stream starting at the requested offset.
// Stream returns ok == false at end-of-stream; Err then reports whether
// the stream ended because of a failure.
type Stream interface {
	beep.Streamer
	Format() beep.Format
	Close() error
}

// Decoder opens decoded streams.
type Decoder interface {
	// Open starts decoding src from offset. Cancelling ctx ends the stream.
	Open(ctx context.Context, src *platform.Source, offset time.Duration) (Stream, error)

	// Name returns the decoder implementation name (e.g., "ffmpeg")
	Name() string
}
