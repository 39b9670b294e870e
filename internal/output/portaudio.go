//go:build portaudio

package output

import (
	"context"
	"log/slog"

	"github.com/gopxl/beep/v2"
	"github.com/gordonklaus/portaudio"
)

// framesPerBuffer is the portaudio blocking-write buffer size.
const framesPerBuffer = 1024

// PortAudio plays through the default portaudio output stream.
// Each sink opens its own stream.
type PortAudio struct {
	config Config
	logger *slog.Logger
}

// NewPortAudio returns a portaudio Device.
func NewPortAudio(cfg Config, logger *slog.Logger) *PortAudio {
	return &PortAudio{config: cfg, logger: logger.With("output", "portaudio")}
}

func (p *PortAudio) Name() string { return "portaudio" }

func (p *PortAudio) Open(format beep.Format) (Sink, error) {
	// Initialize/Terminate are reference counted by portaudio.
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	buf := make([]int16, framesPerBuffer*format.NumChannels)
	stream, err := portaudio.OpenDefaultStream(0, format.NumChannels, float64(format.SampleRate), framesPerBuffer, buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, err
	}

	p.logger.Debug("sink opened", "rate", format.SampleRate, "channels", format.NumChannels)

	return &portAudioSink{stream: stream, buf: buf, channels: format.NumChannels}, nil
}

type portAudioSink struct {
	stream   *portaudio.Stream
	buf      []int16
	fill     int
	channels int
	closed   bool
}

func (s *portAudioSink) Write(samples [][2]float64) error {
	for _, sample := range samples {
		for c := 0; c < s.channels && c < 2; c++ {
			s.buf[s.fill] = int16(clamp(sample[c]) * 32767) //nolint:gosec // clamped
			s.fill++
		}
		if s.fill == len(s.buf) {
			if err := s.stream.Write(); err != nil {
				return err
			}
			s.fill = 0
		}
	}
	return nil
}

func (s *portAudioSink) Drain(ctx context.Context) error {
	if s.fill > 0 {
		clear(s.buf[s.fill:])
		if err := s.stream.Write(); err != nil {
			return err
		}
		s.fill = 0
	}
	// Pa_StopStream returns after pending buffers have been played.
	return drainWithin(ctx, s.stream.Stop, s.stream.Abort)
}

func (s *portAudioSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.stream.Abort()
	err := s.stream.Close()
	_ = portaudio.Terminate()
	return err
}
