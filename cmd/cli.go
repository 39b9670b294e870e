package cmd

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"yt-audio/internal/player"
)

// Config holds the CLI configuration parsed from arguments.
type Config struct {
	Platform   string        // Extractor name (e.g., "youtube", "yt-dlp")
	URL        string        // Media URL or video ID
	ConfigPath string        // Explicit config file
	Start      time.Duration // Start offset, negative when not given
}

// StartSet reports whether playback should begin immediately.
func (c *Config) StartSet() bool {
	return c.Start >= 0
}

// ParseArgs parses command line arguments (without the program name).
func ParseArgs(args []string) (*Config, error) {
	config := &Config{}
	var start float64

	fs := flag.NewFlagSet("yt-audio", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&config.Platform, "p", "", "Extractor name (youtube, yt-dlp)")
	fs.StringVar(&config.Platform, "platform", "", "Extractor name (youtube, yt-dlp)")
	fs.StringVar(&config.URL, "url", "", "Media URL to play")
	fs.StringVar(&config.ConfigPath, "config", "", "Config file path")
	fs.Float64Var(&start, "start", -1, "Start playing immediately from this second")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// If no -url flag, take the positional argument
	if config.URL == "" && fs.NArg() > 0 {
		config.URL = fs.Arg(0)
	}

	if config.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}

	config.Start = -1
	if start >= 0 || math.IsNaN(start) {
		offset, err := player.OffsetFromSeconds(start)
		if err != nil {
			return nil, fmt.Errorf("-start: %w", err)
		}
		config.Start = offset
	}

	return config, nil
}

// printUsage prints the usage information.
func printUsage() {
	fmt.Println("\nUsage:")
	fmt.Println("  yt-audio [-config file] [-p extractor] [-start seconds] -url <url>")
	fmt.Println("  yt-audio <youtube_url>")
	fmt.Println("\nFlags:")
	fmt.Println("  -p, -platform    Extractor name (youtube, yt-dlp)")
	fmt.Println("  -url             Media URL or video ID to play")
	fmt.Println("  -config          Config file (default: $XDG_CONFIG_HOME/yt-audio/config.toml)")
	fmt.Println("  -start           Start playing immediately from this second")
	fmt.Println("\nCommands (stdin):")
	fmt.Println("  <seconds>        Play from this offset")
	fmt.Println("  stop             Stop playback")
	fmt.Println("  status           Show position")
	fmt.Println("  exit             Stop and quit")
	fmt.Println("\nExamples:")
	fmt.Println("  yt-audio -start 50 https://www.youtube.com/watch?v=W-P_ShiZqvg")
	fmt.Println("  yt-audio W-P_ShiZqvg")
	fmt.Println()
}

// PrintUsageAndExit prints usage and exits with code 1.
func PrintUsageAndExit() {
	printUsage()
	os.Exit(1)
}
