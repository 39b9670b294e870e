package decoder

import (
	"encoding/binary"

	"github.com/gopxl/beep/v2"
)

// PCMStreamer implements beep.Streamer over a channel of interleaved s16le
// chunks. Samples may be split across chunk boundaries.
type PCMStreamer struct {
	chunks  <-chan []byte
	format  beep.Format
	pending []byte
	errFn   func() error
	err     error
	drained bool
}

// NewPCMStreamer creates a streamer reading chunks until the channel is closed.
// errFn, if not nil, is consulted once the channel is drained.
func NewPCMStreamer(format beep.Format, chunks <-chan []byte, errFn func() error) *PCMStreamer {
	return &PCMStreamer{
		chunks: chunks,
		format: format,
		errFn:  errFn,
	}
}

// Stream fills samples, blocking until enough PCM has arrived or the chunk
// channel is closed.
func (s *PCMStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	width := s.format.NumChannels * 2

	for n < len(samples) {
		if len(s.pending) < width {
			if s.drained {
				break
			}
			chunk, more := <-s.chunks
			if !more {
				s.drained = true
				if s.errFn != nil {
					s.err = s.errFn()
				}
				continue
			}
			s.pending = append(s.pending, chunk...)
			continue
		}

		left := float64(int16(binary.LittleEndian.Uint16(s.pending))) / 32768.0 //nolint:gosec // audio samples
		right := left
		if s.format.NumChannels > 1 {
			right = float64(int16(binary.LittleEndian.Uint16(s.pending[2:]))) / 32768.0 //nolint:gosec // audio samples
		}
		samples[n][0] = left
		samples[n][1] = right
		s.pending = s.pending[width:]
		n++
	}

	if n == 0 && s.drained {
		return 0, false
	}
	return n, true
}

// Err returns the error that ended the stream, if any.
func (s *PCMStreamer) Err() error {
	return s.err
}

// Format returns the PCM format of the stream.
func (s *PCMStreamer) Format() beep.Format {
	return s.format
}
