// Package youtube resolves YouTube URLs into direct audio stream URLs.
//
// Two extractors are provided: Client talks to YouTube directly through
// github.com/kkdai/youtube/v2, and YtDlp shells out to yt-dlp. Register
// Client first and YtDlp as the fallback.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"yt-audio/internal/platform"
)

// ErrNoAudioFormat is returned when a video exposes no audio-only format.
var ErrNoAudioFormat = errors.New("no audio format available")

// Client implements platform.StreamExtractor on top of the kkdai/youtube client.
type Client struct {
	client *yt.Client
	logger *slog.Logger
}

// NewClient creates a YouTube extractor. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client: &yt.Client{HTTPClient: httpClient},
		logger: logger.With("extractor", "youtube"),
	}
}

// Name returns the platform name.
func (c *Client) Name() string {
	return "youtube"
}

// CanHandle returns true if the URL is a YouTube URL or video ID.
func (c *Client) CanHandle(url string) bool {
	return canHandle(url)
}

// Resolve fetches the video metadata and picks the highest bitrate audio-only format.
func (c *Client) Resolve(ctx context.Context, url string) (*platform.Source, error) {
	start := time.Now()

	video, err := c.client.GetVideoContext(ctx, normalizeYouTubeURL(url))
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	formats := audioFormats(video.Formats)
	if len(formats) == 0 {
		return nil, fmt.Errorf("%s: %w", video.ID, ErrNoAudioFormat)
	}

	streamURL, err := c.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("get stream url: %w", err)
	}

	c.logger.Debug("resolved",
		"video", video.ID,
		"itag", formats[0].ItagNo,
		"mime", formats[0].MimeType,
		"took", time.Since(start),
	)

	return &platform.Source{
		URL:        url,
		StreamURL:  streamURL,
		Title:      video.Title,
		Duration:   video.Duration,
		Extractor:  c.Name(),
		ResolvedAt: time.Now(),
	}, nil
}

// audioFormats returns the audio-only formats, best bitrate first.
func audioFormats(list yt.FormatList) yt.FormatList {
	audio := list.Type("audio/").WithAudioChannels()
	sort.SliceStable(audio, func(i, j int) bool {
		return audio[i].Bitrate > audio[j].Bitrate
	})
	return audio
}
