//go:build !portaudio

package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortAudioStub_Unavailable(t *testing.T) {
	_, err := NewPortAudio(Config{}, nil).Open(stereo)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}
