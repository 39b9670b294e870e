//go:build !portaudio

package output

import (
	"fmt"
	"log/slog"

	"github.com/gopxl/beep/v2"
)

// PortAudio is a placeholder used when built without the portaudio tag.
type PortAudio struct{}

func NewPortAudio(Config, *slog.Logger) *PortAudio { return &PortAudio{} }

func (p *PortAudio) Name() string { return "portaudio" }

func (p *PortAudio) Open(beep.Format) (Sink, error) {
	return nil, fmt.Errorf("portaudio: %w (build with -tags portaudio)", ErrBackendUnavailable)
}
