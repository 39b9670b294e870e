package cmd

import (
	"fmt"
	"log/slog"

	"yt-audio/internal/config"
	"yt-audio/internal/decoder"
	"yt-audio/internal/metrics"
	"yt-audio/internal/output"
	"yt-audio/internal/platform"
	"yt-audio/internal/platform/youtube"
	"yt-audio/internal/player"
	"yt-audio/pkg/deps"
)

// App holds the collaborators shared by every player of the process.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *platform.Registry
	Decoder  decoder.Decoder
	Device   output.Device
}

// NewApp wires extractors, decoder and output device from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*App, error) {
	device, err := output.New(output.Config{
		Backend:      cfg.Output.Backend,
		Device:       cfg.Output.Device,
		BufferSize:   cfg.Output.Buffer,
		FFmpegBinary: cfg.Audio.FFmpeg,
	}, logger)
	if err != nil {
		return nil, err
	}

	dec := decoder.NewFFmpeg(decoder.Config{
		Binary:     cfg.Audio.FFmpeg,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Prebuffer:  cfg.Audio.Prebuffer,
		MaxBuffer:  cfg.Audio.MaxBuffer,
	}, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Registry: newRegistry(cfg.YouTube, logger),
		Decoder:  dec,
		Device:   device,
	}, nil
}

// newRegistry registers the built-in client and yt-dlp, yt-dlp first when preferred.
func newRegistry(cfg config.YouTubeConfig, logger *slog.Logger) *platform.Registry {
	client := youtube.NewClient(nil, logger)
	ytdlp := youtube.NewYtDlp(youtube.YtDlpConfig{
		Binary:             cfg.YtDlp,
		CookiesFromBrowser: cfg.CookiesBrowser,
		CookiesFile:        cfg.CookiesFile,
	}, logger)

	if cfg.PreferYtDlp {
		return platform.NewRegistry(ytdlp, client)
	}
	return platform.NewRegistry(client, ytdlp)
}

// UsePlatform restricts resolution to the named extractor.
func (a *App) UsePlatform(name string) error {
	ext := a.Registry.GetExtractorByName(name)
	if ext == nil {
		return fmt.Errorf("unknown platform %q (available: %v)", name, a.Registry.ListPlatforms())
	}
	a.Registry = platform.NewRegistry(ext)
	return nil
}

// NewPlayer creates a player for url on the shared collaborators.
func (a *App) NewPlayer(url string) *player.Player {
	return player.New(url,
		player.WithConfig(player.Config{
			FrameSize:  a.Config.Audio.FrameSize,
			Volume:     a.Config.Audio.Volume,
			ResolveTTL: a.Config.YouTube.ResolveTTL,
		}),
		player.WithRegistry(a.Registry),
		player.WithDecoder(a.Decoder),
		player.WithDevice(a.Device),
		player.WithLogger(a.Logger),
		player.WithMetrics(a.Metrics),
	)
}

// Checker returns the dependency checker for this configuration. ffmpeg
// is always needed; yt-dlp only serves as a fallback extractor.
func (a *App) Checker() *deps.Checker {
	if a.Config.YouTube.PreferYtDlp {
		return deps.NewChecker(a.Config.Audio.FFmpeg, a.Config.YouTube.YtDlp)
	}
	return deps.NewChecker(a.Config.Audio.FFmpeg).Optional(a.Config.YouTube.YtDlp)
}
