package portfolio

import "regexp"

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([^&?/]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ExtractVideoID returns the YouTube video id found in a watch, short-link,
// embed or shorts URL, or a bare 11-character id. ok is false when no shape
// matches.
func ExtractVideoID(url string) (id string, ok bool) {
	if url == "" {
		return "", false
	}
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(url); len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// ThumbnailURL returns the high-quality thumbnail for the video behind url,
// or "" when no id can be extracted.
func ThumbnailURL(url string) string {
	id, ok := ExtractVideoID(url)
	if !ok {
		return ""
	}
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}

// EmbedURL returns the iframe source for a video id.
func EmbedURL(id string, autoplay bool) string {
	u := "https://www.youtube.com/embed/" + id
	if autoplay {
		u += "?autoplay=1"
	}
	return u
}
