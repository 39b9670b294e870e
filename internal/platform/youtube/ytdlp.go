package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"yt-audio/internal/platform"
)

// YtDlpConfig holds yt-dlp extractor configuration.
type YtDlpConfig struct {
	// Binary is the yt-dlp executable (default "yt-dlp").
	Binary string
	// CookiesFromBrowser extracts cookies from browser (e.g., "firefox", "chrome", "safari")
	CookiesFromBrowser string
	// CookiesFile path to cookies.txt file (alternative to browser cookies)
	CookiesFile string
}

// YtDlpError is returned when the yt-dlp process exits with an error.
type YtDlpError struct {
	ExitCode int
	Stderr   string
}

func (e *YtDlpError) Error() string {
	return fmt.Sprintf("yt-dlp: exit code %d: %s", e.ExitCode, e.Stderr)
}

// YtDlp implements platform.StreamExtractor by running yt-dlp.
type YtDlp struct {
	config YtDlpConfig
	logger *slog.Logger
}

// NewYtDlp creates a yt-dlp backed extractor.
func NewYtDlp(config YtDlpConfig, logger *slog.Logger) *YtDlp {
	if config.Binary == "" {
		config.Binary = "yt-dlp"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YtDlp{config: config, logger: logger.With("extractor", "yt-dlp")}
}

// Name returns the platform name.
func (y *YtDlp) Name() string {
	return "yt-dlp"
}

// CanHandle returns true if the URL is a YouTube URL or video ID.
func (y *YtDlp) CanHandle(url string) bool {
	return canHandle(url)
}

// metadata is the subset of the yt-dlp JSON output we use.
type metadata struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	URL      string  `json:"url"`
}

// Resolve extracts metadata and the direct bestaudio URL in a single yt-dlp run.
func (y *YtDlp) Resolve(ctx context.Context, url string) (*platform.Source, error) {
	url = normalizeYouTubeURL(url)

	args := append(y.baseArgs(), "-f", "bestaudio", "-j", "--skip-download", url)
	out, err := y.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var meta metadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	streamURL := meta.URL
	if streamURL == "" {
		// Fallback: no format selector (may return multiple URLs)
		out, err := y.run(ctx, append(y.baseArgs(), "--get-url", url))
		if err != nil {
			return nil, err
		}
		streamURL, err = pickAudioURL(string(out))
		if err != nil {
			return nil, err
		}
	}

	return &platform.Source{
		URL:        url,
		StreamURL:  streamURL,
		Title:      meta.Title,
		Duration:   time.Duration(meta.Duration * float64(time.Second)),
		Extractor:  y.Name(),
		ResolvedAt: time.Now(),
	}, nil
}

func (y *YtDlp) baseArgs() []string {
	args := []string{
		"--ignore-config",
		"--no-playlist",          // single video only
		"--no-warnings",          // suppress warnings for speed
		"--no-check-certificate", // skip SSL verification (faster)
		"--socket-timeout", "10", // shorter timeout
	}
	return append(args, y.cookieArgs()...)
}

// cookieArgs returns yt-dlp arguments for cookie authentication.
func (y *YtDlp) cookieArgs() []string {
	switch {
	case y.config.CookiesFile != "":
		return []string{"--cookies", y.config.CookiesFile}
	case y.config.CookiesFromBrowser != "":
		return []string{"--cookies-from-browser", y.config.CookiesFromBrowser}
	default:
		return nil
	}
}

func (y *YtDlp) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, y.config.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &YtDlpError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}
	y.logger.Debug("yt-dlp finished", "took", time.Since(start))
	return out, nil
}

// pickAudioURL prefers an audio-only URL when multiple URLs are returned.
func pickAudioURL(output string) (string, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "", fmt.Errorf("yt-dlp returned empty URL")
	}

	lines := strings.Split(trimmed, "\n")
	for _, line := range lines {
		if strings.Contains(line, "mime=audio") || strings.Contains(line, "audio/") {
			return strings.TrimSpace(line), nil
		}
	}

	return strings.TrimSpace(lines[0]), nil
}
