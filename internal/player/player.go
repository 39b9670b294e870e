// Package player plays the audio track of a YouTube video from a start
// offset on the local sound output.
//
// A Player resolves its locator lazily on the first Play, runs one
// background worker per playback session and owns every resource the
// session acquires. Players are independent: each opens its own sink.
package player

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"yt-audio/internal/decoder"
	"yt-audio/internal/metrics"
	"yt-audio/internal/output"
	"yt-audio/internal/platform"
	"yt-audio/internal/platform/youtube"
)

// Config holds player configuration options.
type Config struct {
	FrameSize  int           // Samples per device write (default: 1024)
	Volume     float64       // Linear gain 0..1 (default: 1)
	ResolveTTL time.Duration // Re-resolve after this age, 0 caches forever
}

// DefaultConfig returns the default player configuration.
func DefaultConfig() Config {
	return Config{
		FrameSize:  1024,
		Volume:     1,
		ResolveTTL: 5 * time.Hour,
	}
}

// Option configures a Player.
type Option func(*Player)

// WithConfig sets the player configuration.
func WithConfig(cfg Config) Option {
	return func(p *Player) { p.config = cfg }
}

// WithRegistry sets the extractors used to resolve the locator.
func WithRegistry(r *platform.Registry) Option {
	return func(p *Player) { p.registry = r }
}

// WithDecoder sets the decoder.
func WithDecoder(d decoder.Decoder) Option {
	return func(p *Player) { p.decoder = d }
}

// WithDevice sets the audio output device.
func WithDevice(d output.Device) Option {
	return func(p *Player) { p.device = d }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// WithMetrics records session and error metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Player) { p.metrics = m }
}

// Player controls playback of a single locator.
type Player struct {
	url      string
	config   Config
	registry *platform.Registry
	decoder  decoder.Decoder
	device   output.Device
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// ctl serializes Play, Stop and Close.
	ctl sync.Mutex

	mu      sync.Mutex
	source  *platform.Source
	session *session
	lastErr error
	subs    []*Subscription
	closed  bool
}

// New creates a player for url. No I/O happens until Play.
func New(url string, opts ...Option) *Player {
	p := &Player{url: url, config: DefaultConfig()}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("url", url)

	if p.config.FrameSize <= 0 {
		p.config.FrameSize = DefaultConfig().FrameSize
	}
	if p.registry == nil {
		p.registry = platform.NewRegistry(
			youtube.NewClient(nil, p.logger),
			youtube.NewYtDlp(youtube.YtDlpConfig{}, p.logger),
		)
	}
	if p.decoder == nil {
		p.decoder = decoder.NewFFmpeg(decoder.DefaultConfig(), p.logger)
	}
	if p.device == nil {
		p.device = output.NewOto(output.DefaultConfig(), p.logger)
	}
	return p
}

// URL returns the locator the player was created with.
func (p *Player) URL() string { return p.url }

// Play starts playback from offset and returns once the worker is running.
// A running session is stopped first.
func (p *Player) Play(offset time.Duration) error {
	return p.PlayContext(context.Background(), offset)
}

// PlayContext is Play with a context bounding resolution and stream setup.
// The context does not control the playback itself; use Stop for that.
func (p *Player) PlayContext(ctx context.Context, offset time.Duration) error {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	p.stopLocked()

	s, err := p.start(ctx, offset)
	if err != nil {
		p.metrics.RecordError(errorKind(err))
		p.logger.Warn("play failed", "offset", offset, "error", err)
		return err
	}

	p.mu.Lock()
	p.session = s
	p.lastErr = nil
	p.emitState(Idle, Playing)
	p.mu.Unlock()

	p.metrics.RecordSessionStarted()
	p.logger.Info("playback started", "session", s.id, "offset", offset)

	go p.run(s)
	return nil
}

// start resolves the source and acquires the decoder and sink. On error
// nothing is left open.
func (p *Player) start(ctx context.Context, offset time.Duration) (*session, error) {
	if offset < 0 {
		return nil, &SeekError{Offset: offset}
	}

	src, err := p.resolve(ctx)
	if err != nil {
		return nil, &ResolutionError{URL: p.url, Op: "resolve", Err: err}
	}

	if src.Duration > 0 && offset >= src.Duration {
		return nil, &SeekError{Offset: offset, Duration: src.Duration}
	}

	sctx, cancel := context.WithCancel(context.Background())

	stream, err := p.decoder.Open(sctx, src, offset)
	if err != nil {
		cancel()
		return nil, &ResolutionError{URL: p.url, Op: "open", Err: err}
	}
	if err := ctx.Err(); err != nil {
		_ = stream.Close()
		cancel()
		return nil, &ResolutionError{URL: p.url, Op: "open", Err: err}
	}

	sink, err := p.device.Open(stream.Format())
	if err != nil {
		_ = stream.Close()
		cancel()
		return nil, &DeviceError{Op: "open", Err: err}
	}

	return newSession(sctx, cancel, offset, stream, sink), nil
}

// resolve returns the cached source, resolving again when it has expired.
func (p *Player) resolve(ctx context.Context) (*platform.Source, error) {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()

	if !src.Expired(p.config.ResolveTTL, time.Now()) {
		return src, nil
	}

	start := time.Now()
	src, err := p.registry.Resolve(ctx, p.url)
	if err != nil {
		p.metrics.RecordResolve("", time.Since(start))
		return nil, err
	}
	p.metrics.RecordResolve(src.Extractor, time.Since(start))
	p.logger.Debug("resolved", "extractor", src.Extractor, "title", src.Title, "duration", src.Duration)

	p.mu.Lock()
	p.source = src
	p.mu.Unlock()
	return src, nil
}

// Stop ends the running session and waits for the worker to release the
// decoder and sink. Stop is a no-op when Idle.
func (p *Player) Stop() {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	p.mu.Lock()
	s := p.session
	p.session = nil
	p.mu.Unlock()

	if s == nil {
		return
	}

	s.cancel()
	<-s.done

	p.mu.Lock()
	p.emitState(Playing, Idle)
	p.mu.Unlock()

	p.logger.Info("playback stopped", "session", s.id, "position", s.position())
}

// Close stops playback and closes all subscriptions. Play fails afterwards.
func (p *Player) Close() {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.stopLocked()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, sub := range p.subs {
		sub.close()
	}
	p.subs = nil
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return Playing
	}
	return Idle
}

// Position returns the stream time of the last frame handed to the device,
// or zero when Idle.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s == nil {
		return 0
	}
	return s.position()
}

// Duration returns the stream length once resolved, zero if unknown.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return 0
	}
	return p.source.Duration
}

// Title returns the resolved title, empty before the first Play.
func (p *Player) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return ""
	}
	return p.source.Title
}

// Err returns the error that ended the last session, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Subscribe returns a subscription for state and error events.
func (p *Player) Subscribe() *Subscription {
	sub := newSubscription()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		sub.close()
		return sub
	}
	p.subs = append(p.subs, sub)
	return sub
}

// Unsubscribe removes and closes a subscription.
func (p *Player) Unsubscribe(sub *Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subs {
		if s == sub {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// emitState must be called with mu held.
func (p *Player) emitState(from, to State) {
	for _, sub := range p.subs {
		sub.sendState(StateChange{From: from, To: to})
	}
}

// emitError must be called with mu held.
func (p *Player) emitError(op string, err error) {
	for _, sub := range p.subs {
		sub.sendError(ErrorEvent{Operation: op, URL: p.url, Err: err})
	}
}
