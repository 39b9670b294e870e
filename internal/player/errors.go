package player

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sentinels for matching error kinds with errors.Is.
var (
	ErrResolution = errors.New("stream resolution failed")
	ErrSeek       = errors.New("invalid start offset")
	ErrDevice     = errors.New("audio device failure")
	ErrClosed     = errors.New("player closed")
)

// ResolutionError reports that the locator could not be turned into
// decodable audio. Op is "resolve", "open" or "decode".
type ResolutionError struct {
	URL string
	Op  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// SeekError reports a start offset outside the stream. Duration is zero
// when the stream length is unknown.
type SeekError struct {
	Offset   time.Duration
	Duration time.Duration
}

func (e *SeekError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("seek to %s: negative offset", e.Offset)
	}
	return fmt.Sprintf("seek to %s: past end of stream (%s)", e.Offset, e.Duration)
}

func (e *SeekError) Is(target error) bool { return target == ErrSeek }

// maxOffsetSeconds is the largest offset a time.Duration can hold.
const maxOffsetSeconds = float64(math.MaxInt64) / float64(time.Second)

// OffsetFromSeconds converts a start offset in seconds to a Duration.
// NaN, infinities and values a Duration cannot hold wrap ErrSeek.
// Negative values convert as is and are rejected by Play.
func OffsetFromSeconds(secs float64) (time.Duration, error) {
	if math.IsNaN(secs) || math.Abs(secs) >= maxOffsetSeconds {
		return 0, fmt.Errorf("%w: %v seconds", ErrSeek, secs)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// DeviceError reports an audio output failure. Op is "open" or "write".
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func (e *DeviceError) Is(target error) bool { return target == ErrDevice }

// errorKind returns the metrics label for err.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrSeek):
		return "seek"
	case errors.Is(err, ErrDevice):
		return "device"
	default:
		return "other"
	}
}
