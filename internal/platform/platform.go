package platform

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedURL is returned when no registered extractor can handle a URL.
var ErrUnsupportedURL = errors.New("unsupported URL")

// Source is a media locator together with what was learned while resolving it.
type Source struct {
	URL        string        // Locator as given by the caller
	StreamURL  string        // Direct audio stream URL (fetchable by the decoder)
	Title      string        // Human readable title, may be empty
	Duration   time.Duration // 0 when unknown (live streams)
	Extractor  string        // Name of the extractor that resolved it
	ResolvedAt time.Time
}

// Expired reports whether the resolution is older than ttl.
// A non-positive ttl never expires.
func (s *Source) Expired(ttl time.Duration, now time.Time) bool {
	if s == nil {
		return true
	}
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.ResolvedAt) >= ttl
}

// StreamExtractor resolves a media URL into a playable audio stream.
type StreamExtractor interface {
	// Resolve fetches metadata and the direct audio stream URL.
	Resolve(ctx context.Context, url string) (*Source, error)

	// CanHandle returns true if this extractor can handle the given URL
	CanHandle(url string) bool

	// Name returns the platform name (e.g., "youtube", "yt-dlp")
	Name() string
}

// Registry holds all registered platform extractors.
// Extractors are tried in registration order.
type Registry struct {
	extractors []StreamExtractor
}

// NewRegistry creates a new platform registry.
func NewRegistry(extractors ...StreamExtractor) *Registry {
	r := &Registry{
		extractors: make([]StreamExtractor, 0, len(extractors)),
	}
	for _, ext := range extractors {
		r.Register(ext)
	}
	return r
}

// Register adds a new extractor to the registry.
func (r *Registry) Register(extractor StreamExtractor) {
	r.extractors = append(r.extractors, extractor)
}

// FindExtractor finds the first extractor that can handle the given URL.
func (r *Registry) FindExtractor(url string) StreamExtractor {
	for _, ext := range r.extractors {
		if ext.CanHandle(url) {
			return ext
		}
	}
	return nil
}

// GetExtractorByName finds an extractor by platform name.
func (r *Registry) GetExtractorByName(name string) StreamExtractor {
	for _, ext := range r.extractors {
		if ext.Name() == name {
			return ext
		}
	}
	return nil
}

// ListPlatforms returns all registered platform names.
func (r *Registry) ListPlatforms() []string {
	names := make([]string, len(r.extractors))
	for i, ext := range r.extractors {
		names[i] = ext.Name()
	}
	return names
}

// Resolve tries every extractor that can handle url, in order, and returns
// the first successful resolution. The errors of all failed attempts are
// joined into the returned error.
func (r *Registry) Resolve(ctx context.Context, url string) (*Source, error) {
	var errs []error
	for _, ext := range r.extractors {
		if !ext.CanHandle(url) {
			continue
		}
		src, err := ext.Resolve(ctx, url)
		if err == nil {
			if src.Extractor == "" {
				src.Extractor = ext.Name()
			}
			return src, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", ext.Name(), err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
	}
	return nil, errors.Join(errs...)
}
