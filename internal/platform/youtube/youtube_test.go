package youtube

import (
	"testing"

	yt "github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanHandle(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=W-P_ShiZqvg", true},
		{"short url", "https://youtu.be/W-P_ShiZqvg", true},
		{"bare id", "W-P_ShiZqvg", true},
		{"padded id", "  W-P_ShiZqvg  ", true},
		{"empty", "", false},
		{"other host", "https://soundcloud.com/a/b", false},
		{"id too short", "abc", false},
		{"id bad chars", "W-P_ShiZqv!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canHandle(tt.url))
		})
	}
}

func TestNormalizeYouTubeURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=W-P_ShiZqvg", normalizeYouTubeURL("W-P_ShiZqvg"))
	assert.Equal(t, "https://youtu.be/x", normalizeYouTubeURL(" https://youtu.be/x "))
	assert.Equal(t, "not a url", normalizeYouTubeURL("not a url"))
	assert.Equal(t, "", normalizeYouTubeURL("   "))
}

func TestAudioFormats_BestBitrateFirst(t *testing.T) {
	list := yt.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
		{ItagNo: 139, MimeType: `audio/mp4; codecs="mp4a.40.5"`, Bitrate: 48000, AudioChannels: 2},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 128000, AudioChannels: 2},
		{ItagNo: 999, MimeType: `audio/webm`, Bitrate: 999999, AudioChannels: 0},
	}

	got := audioFormats(list)
	require.Len(t, got, 3)
	assert.Equal(t, 251, got[0].ItagNo)
	assert.Equal(t, 140, got[1].ItagNo)
	assert.Equal(t, 139, got[2].ItagNo)
}

func TestPickAudioURL(t *testing.T) {
	out := "https://v.example/video?mime=video%2Fmp4\nhttps://a.example/audio?mime=audio%2Fwebm\n"
	url, err := pickAudioURL(out)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example/audio?mime=audio%2Fwebm", url)

	url, err = pickAudioURL("https://only.example/stream\n")
	require.NoError(t, err)
	assert.Equal(t, "https://only.example/stream", url)

	_, err = pickAudioURL("  \n")
	assert.Error(t, err)
}

func TestYtDlp_CookieArgs(t *testing.T) {
	y := NewYtDlp(YtDlpConfig{CookiesFile: "/tmp/cookies.txt", CookiesFromBrowser: "firefox"}, nil)
	assert.Equal(t, []string{"--cookies", "/tmp/cookies.txt"}, y.cookieArgs())

	y = NewYtDlp(YtDlpConfig{CookiesFromBrowser: "firefox"}, nil)
	assert.Equal(t, []string{"--cookies-from-browser", "firefox"}, y.cookieArgs())

	y = NewYtDlp(YtDlpConfig{}, nil)
	assert.Nil(t, y.cookieArgs())
	assert.Equal(t, "yt-dlp", y.config.Binary)
}

func TestYtDlpError(t *testing.T) {
	err := &YtDlpError{ExitCode: 1, Stderr: "ERROR: Video unavailable"}
	assert.Equal(t, "yt-dlp: exit code 1: ERROR: Video unavailable", err.Error())
}
