package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"

	"yt-audio/internal/decoder"
	"yt-audio/internal/output"
	"yt-audio/internal/platform"
)

var testFormat = beep.Format{SampleRate: 1000, NumChannels: 2, Precision: 2}

// fakeExtractor resolves every URL with a "watch" prefix.
type fakeExtractor struct {
	duration time.Duration
	err      error
	calls    atomic.Int32
}

func (f *fakeExtractor) Name() string { return "fake" }

func (f *fakeExtractor) CanHandle(url string) bool { return len(url) > 5 && url[:5] == "watch" }

func (f *fakeExtractor) Resolve(_ context.Context, url string) (*platform.Source, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &platform.Source{
		URL:        url,
		StreamURL:  "fake://" + url,
		Title:      "Fake Track",
		Duration:   f.duration,
		ResolvedAt: time.Now(),
	}, nil
}

// fakeDecoder produces a stream whose left channel carries the absolute
// sample index, so the first written sample reveals the seek position.
type fakeDecoder struct {
	total   int // samples in the whole stream
	failAt  int // inject a decode error at this index, 0 disables
	openErr error

	mu      sync.Mutex
	opens   []time.Duration
	streams []*fakeStream
}

func (d *fakeDecoder) Name() string { return "fake" }

func (d *fakeDecoder) Open(ctx context.Context, _ *platform.Source, offset time.Duration) (decoder.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens = append(d.opens, offset)
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := &fakeStream{ctx: ctx, pos: testFormat.SampleRate.N(offset), total: d.total, failAt: d.failAt}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDecoder) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.opens)
}

func (d *fakeDecoder) allClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.streams {
		if !s.closed.Load() {
			return false
		}
	}
	return true
}

type fakeStream struct {
	ctx    context.Context
	pos    int
	total  int
	failAt int
	err    error
	closed atomic.Bool
}

func (s *fakeStream) Stream(samples [][2]float64) (int, bool) {
	if s.ctx.Err() != nil || s.err != nil {
		return 0, false
	}
	n := 0
	for n < len(samples) && s.pos < s.total {
		if s.failAt > 0 && s.pos >= s.failAt {
			s.err = errors.New("connection reset")
			break
		}
		samples[n] = [2]float64{float64(s.pos), -float64(s.pos)}
		s.pos++
		n++
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}

func (s *fakeStream) Err() error { return s.err }

func (s *fakeStream) Format() beep.Format { return testFormat }

func (s *fakeStream) Close() error {
	s.closed.Store(true)
	return nil
}

// fakeDevice tracks how many sinks are open at once.
type fakeDevice struct {
	openErr    error
	writeErr   error
	writeDelay time.Duration
	closeDelay time.Duration

	opened  atomic.Int32
	open    atomic.Int32
	maxOpen atomic.Int32

	mu    sync.Mutex
	sinks []*fakeSink
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Open(format beep.Format) (output.Sink, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened.Add(1)
	n := d.open.Add(1)
	for {
		m := d.maxOpen.Load()
		if n <= m || d.maxOpen.CompareAndSwap(m, n) {
			break
		}
	}
	s := &fakeSink{device: d, first: -1}
	d.mu.Lock()
	d.sinks = append(d.sinks, s)
	d.mu.Unlock()
	return s, nil
}

func (d *fakeDevice) sink(i int) *fakeSink {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.sinks) {
		return nil
	}
	return d.sinks[i]
}

type fakeSink struct {
	device *fakeDevice

	mu      sync.Mutex
	first   float64
	written int
	drained bool
	closed  bool
}

func (s *fakeSink) Write(samples [][2]float64) error {
	if s.device.writeDelay > 0 {
		time.Sleep(s.device.writeDelay)
	}
	if s.device.writeErr != nil {
		return s.device.writeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("write on closed sink")
	}
	if s.written == 0 {
		s.first = samples[0][0]
	}
	s.written += len(samples)
	return nil
}

func (s *fakeSink) Drain(context.Context) error {
	s.mu.Lock()
	s.drained = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSink) Close() error {
	if s.device.closeDelay > 0 {
		time.Sleep(s.device.closeDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.device.open.Add(-1)
	}
	return nil
}

func (s *fakeSink) stats() (first float64, written int, drained bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first, s.written, s.drained
}
