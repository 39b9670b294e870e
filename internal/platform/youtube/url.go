package youtube

import "strings"

const watchURLPrefix = "https://www.youtube.com/watch?v="

// canHandle returns true if the URL is a YouTube URL or a bare video ID.
func canHandle(url string) bool {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return false
	}
	if isYouTubeHost(trimmed) {
		return true
	}
	return isYouTubeID(trimmed)
}

func isYouTubeHost(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

func isYouTubeID(value string) bool {
	if len(value) != 11 {
		return false
	}
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}

// normalizeYouTubeURL turns a bare video ID into a watch URL.
func normalizeYouTubeURL(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || isYouTubeHost(trimmed) {
		return trimmed
	}
	if isYouTubeID(trimmed) {
		return watchURLPrefix + trimmed
	}
	return trimmed
}
