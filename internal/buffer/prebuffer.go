// Package buffer holds decoded PCM chunks between the decoder and the
// playback worker.
package buffer

import (
	"context"
	"time"
)

// defaultChunkDuration is assumed per chunk when the byte rate is unknown.
const defaultChunkDuration = 20 * time.Millisecond

type Config struct {
	ByteRate  int           // PCM bytes per second of audio
	Prebuffer time.Duration // audio held back before the first chunk is released
	MaxBuffer time.Duration // stop reading input above this much queued audio (0 = unbounded)
}

// Prebuffer delays the start of a chunk stream until enough audio is queued,
// then passes chunks through while reading ahead up to MaxBuffer.
type Prebuffer struct {
	cfg Config
}

func NewPrebuffer(cfg Config) *Prebuffer {
	return &Prebuffer{cfg: cfg}
}

// Start consumes input until it is closed or ctx is done. The returned
// channel is closed after the last queued chunk has been delivered, or
// immediately when ctx is done.
func (p *Prebuffer) Start(ctx context.Context, input <-chan []byte) <-chan []byte {
	output := make(chan []byte)

	go func() {
		defer close(output)

		var queue [][]byte
		var buffered time.Duration
		in := input
		ready := p.cfg.Prebuffer <= 0

		for {
			if in == nil && len(queue) == 0 {
				return
			}

			var out chan<- []byte
			var next []byte
			if ready && len(queue) > 0 {
				out = output
				next = queue[0]
			}

			recv := in
			if p.full(buffered) && out != nil {
				recv = nil
			}

			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-recv:
				if !ok {
					in = nil
					ready = true
					continue
				}
				queue = append(queue, chunk)
				buffered += p.durationFor(chunk)
				if buffered >= p.cfg.Prebuffer || p.full(buffered) {
					ready = true
				}
			case out <- next:
				queue[0] = nil
				queue = queue[1:]
				buffered -= p.durationFor(next)
				if buffered < 0 {
					buffered = 0
				}
			}
		}
	}()

	return output
}

func (p *Prebuffer) full(buffered time.Duration) bool {
	return p.cfg.MaxBuffer > 0 && buffered >= p.cfg.MaxBuffer
}

func (p *Prebuffer) durationFor(chunk []byte) time.Duration {
	if p.cfg.ByteRate <= 0 {
		return defaultChunkDuration
	}
	seconds := float64(len(chunk)) / float64(p.cfg.ByteRate)
	return time.Duration(seconds * float64(time.Second))
}
