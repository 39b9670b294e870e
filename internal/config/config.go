package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "YTAUDIO_"

	configRelPath = "yt-audio/config.toml"
)

type Config struct {
	Audio   AudioConfig   `koanf:"audio"`
	Output  OutputConfig  `koanf:"output"`
	YouTube YouTubeConfig `koanf:"youtube"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// AudioConfig controls decoding and the frames handed to the device.
type AudioConfig struct {
	FFmpeg     string        `koanf:"ffmpeg"`      // ffmpeg executable
	SampleRate int           `koanf:"sample_rate"` // Hz (default: 48000)
	Channels   int           `koanf:"channels"`    // 1 or 2 (default: 2)
	FrameSize  int           `koanf:"frame_size"`  // samples per device write (default: 1024)
	Prebuffer  time.Duration `koanf:"prebuffer"`   // audio buffered before the first frame (default: 200ms)
	MaxBuffer  time.Duration `koanf:"max_buffer"`  // read-ahead limit (default: 2s)
	Volume     float64       `koanf:"volume"`      // linear gain 0..1 (default: 1)
}

// OutputConfig selects the audio backend.
type OutputConfig struct {
	Backend string        `koanf:"backend"` // "oto", "portaudio" or "ffmpeg"
	Device  string        `koanf:"device"`  // ffmpeg backend: pulse sink name
	Buffer  time.Duration `koanf:"buffer"`  // device buffer (default: 100ms)
}

// YouTubeConfig holds stream resolution settings.
type YouTubeConfig struct {
	YtDlp          string        `koanf:"ytdlp"`           // yt-dlp executable
	CookiesFile    string        `koanf:"cookies_file"`    // cookies.txt for yt-dlp
	CookiesBrowser string        `koanf:"cookies_browser"` // e.g. "firefox", "chrome"
	ResolveTTL     time.Duration `koanf:"resolve_ttl"`     // stream URLs expire after this (default: 5h)
	PreferYtDlp    bool          `koanf:"prefer_ytdlp"`    // try yt-dlp before the built-in client
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Address string `koanf:"address"` // listen address (default: ":8180")
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // tint, text, json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			FFmpeg:     "ffmpeg",
			SampleRate: 48000,
			Channels:   2,
			FrameSize:  1024,
			Prebuffer:  200 * time.Millisecond,
			MaxBuffer:  2 * time.Second,
			Volume:     1,
		},
		Output: OutputConfig{
			Backend: "oto",
			Device:  "default",
			Buffer:  100 * time.Millisecond,
		},
		YouTube: YouTubeConfig{
			YtDlp:      "yt-dlp",
			ResolveTTL: 5 * time.Hour,
		},
		Server: ServerConfig{
			Address: ":8180",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "tint",
		},
	}
}

// Load reads the configuration. An explicit path must exist; otherwise the
// XDG config file and ./config.toml are used when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	paths, err := configPaths(path)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.YouTube.CookiesFile = expandPath(cfg.YouTube.CookiesFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPaths returns the config files to load, lowest priority first.
func configPaths(explicit string) ([]string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return []string{explicit}, nil
	}

	var paths []string
	if p, err := xdg.SearchConfigFile(configRelPath); err == nil {
		paths = append(paths, p)
	}
	if _, err := os.Stat("config.toml"); err == nil {
		paths = append(paths, "config.toml")
	}
	return paths, nil
}

// envKey maps YTAUDIO_AUDIO__SAMPLE_RATE to audio.sample_rate.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// DefaultPath returns where the user config file lives, creating the
// parent directory.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(configRelPath)
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}
	if err := c.YouTube.Validate(); err != nil {
		return fmt.Errorf("youtube config: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (a *AudioConfig) Validate() error {
	if a.FFmpeg == "" {
		return fmt.Errorf("ffmpeg cannot be empty")
	}
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", a.SampleRate)
	}
	if a.Channels != 1 && a.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", a.Channels)
	}
	if a.FrameSize < 1 {
		return fmt.Errorf("frame_size must be at least 1, got %d", a.FrameSize)
	}
	if a.Prebuffer < 0 {
		return fmt.Errorf("prebuffer cannot be negative, got %s", a.Prebuffer)
	}
	if a.MaxBuffer < a.Prebuffer {
		return fmt.Errorf("max_buffer (%s) must not be less than prebuffer (%s)", a.MaxBuffer, a.Prebuffer)
	}
	if a.Volume < 0 || a.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %g", a.Volume)
	}
	return nil
}

func (o *OutputConfig) Validate() error {
	switch o.Backend {
	case "oto", "portaudio", "ffmpeg":
	default:
		return fmt.Errorf("backend must be one of [oto, portaudio, ffmpeg], got '%s'", o.Backend)
	}
	if o.Buffer <= 0 {
		return fmt.Errorf("buffer must be positive, got %s", o.Buffer)
	}
	return nil
}

func (y *YouTubeConfig) Validate() error {
	if y.YtDlp == "" {
		return fmt.Errorf("ytdlp cannot be empty")
	}
	if y.ResolveTTL < 0 {
		return fmt.Errorf("resolve_ttl cannot be negative, got %s", y.ResolveTTL)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	switch l.Format {
	case "tint", "text", "json":
	default:
		return fmt.Errorf("format must be one of [tint, text, json], got '%s'", l.Format)
	}
	return nil
}
