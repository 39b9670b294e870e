package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	name    string
	handles bool
	src     *Source
	err     error
	calls   int
}

func (s *stubExtractor) Resolve(_ context.Context, url string) (*Source, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	src := *s.src
	src.URL = url
	return &src, nil
}

func (s *stubExtractor) CanHandle(string) bool { return s.handles }
func (s *stubExtractor) Name() string          { return s.name }

func TestRegistry_FindAndList(t *testing.T) {
	a := &stubExtractor{name: "a", handles: false}
	b := &stubExtractor{name: "b", handles: true}
	r := NewRegistry(a, b)

	assert.Equal(t, []string{"a", "b"}, r.ListPlatforms())
	assert.Same(t, b, r.FindExtractor("x"))
	assert.Same(t, a, r.GetExtractorByName("a"))
	assert.Nil(t, r.GetExtractorByName("missing"))
}

func TestRegistry_ResolveFallsBack(t *testing.T) {
	first := &stubExtractor{name: "first", handles: true, err: errors.New("boom")}
	second := &stubExtractor{name: "second", handles: true, src: &Source{StreamURL: "https://cdn/audio"}}
	r := NewRegistry(first, second)

	src, err := r.Resolve(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/audio", src.StreamURL)
	assert.Equal(t, "second", src.Extractor)
	assert.Equal(t, 1, first.calls)
}

func TestRegistry_ResolveJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	r := NewRegistry(
		&stubExtractor{name: "a", handles: true, err: errA},
		&stubExtractor{name: "b", handles: true, err: errB},
	)

	_, err := r.Resolve(context.Background(), "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestRegistry_ResolveUnsupported(t *testing.T) {
	r := NewRegistry(&stubExtractor{name: "a", handles: false})

	_, err := r.Resolve(context.Background(), "ftp://nope")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestSource_Expired(t *testing.T) {
	now := time.Now()
	src := &Source{ResolvedAt: now.Add(-2 * time.Hour)}

	assert.False(t, src.Expired(0, now))
	assert.False(t, src.Expired(3*time.Hour, now))
	assert.True(t, src.Expired(time.Hour, now))

	var missing *Source
	assert.True(t, missing.Expired(time.Hour, now))
}
