package player

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"yt-audio/internal/decoder"
	"yt-audio/internal/output"
)

var sessionID atomic.Uint64

// session is one playback run: a decode stream feeding one sink from a
// start offset. The worker goroutine owns the stream and the sink.
type session struct {
	id     uint64
	offset time.Duration
	format beep.Format

	stream decoder.Stream
	sink   output.Sink

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// written counts samples handed to the sink.
	written atomic.Int64
}

func newSession(ctx context.Context, cancel context.CancelFunc, offset time.Duration, stream decoder.Stream, sink output.Sink) *session {
	return &session{
		id:     sessionID.Add(1),
		offset: offset,
		format: stream.Format(),
		stream: stream,
		sink:   sink,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// position returns the stream time reached by the session.
func (s *session) position() time.Duration {
	return s.offset + s.format.SampleRate.D(int(s.written.Load()))
}

// run is the session worker. The sink and stream are released before the
// session is cleared, so Idle always means the device is free.
func (p *Player) run(s *session) {
	started := time.Now()
	defer close(s.done)

	err := p.pump(s)
	if err == nil && s.ctx.Err() == nil {
		if derr := s.sink.Drain(s.ctx); derr != nil && s.ctx.Err() == nil {
			err = &DeviceError{Op: "drain", Err: derr}
		}
	}

	s.release()

	p.metrics.RecordSessionEnded(time.Since(started))
	p.finish(s, err)
}

// release cancels the session and closes the sink, then the stream.
func (s *session) release() {
	s.cancel()
	_ = s.sink.Close()
	_ = s.stream.Close()
}

// pump copies frames from the decoder to the sink until the stream ends,
// an error occurs or the session is cancelled.
func (p *Player) pump(s *session) error {
	var streamer beep.Streamer = s.stream
	if v := p.config.Volume; v < 1 {
		streamer = &effects.Volume{Streamer: s.stream, Base: 2, Volume: levelToVolume(v), Silent: v <= 0}
	}

	buf := make([][2]float64, p.config.FrameSize)
	for {
		if s.ctx.Err() != nil {
			return nil
		}

		n, ok := streamer.Stream(buf)
		if n > 0 {
			if s.ctx.Err() != nil {
				return nil
			}
			if err := s.sink.Write(buf[:n]); err != nil {
				if s.ctx.Err() != nil {
					return nil
				}
				return &DeviceError{Op: "write", Err: err}
			}
			s.written.Add(int64(n))
			p.metrics.RecordFrames(n)
		}

		if !ok {
			if err := s.stream.Err(); err != nil && s.ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				return &ResolutionError{URL: p.url, Op: "decode", Err: err}
			}
			return nil
		}
	}
}

// finish clears the session if it is still current, which is the case
// when it ended on its own rather than through Stop.
func (p *Player) finish(s *session, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.lastErr = err
		p.emitError(errorOp(err), err)
		p.metrics.RecordError(errorKind(err))
		p.logger.Error("playback failed", "session", s.id, "position", s.position(), "error", err)
	}

	if p.session != s {
		return
	}
	p.session = nil
	p.emitState(Playing, Idle)
	if err == nil {
		p.logger.Info("playback finished", "session", s.id, "position", s.position())
	}
}

func errorOp(err error) string {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Op
	}
	var de *DeviceError
	if errors.As(err, &de) {
		return de.Op
	}
	return "play"
}

// levelToVolume maps a linear 0..1 level to beep's base 2 volume.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
