package validator

import (
	"net/url"
	"strconv"
	"strings"
)

// NormalizeURL validates a video URL, prepending https:// when the scheme
// is missing. Returns the normalized URL and whether it is usable.
func NormalizeURL(videoURL string) (string, bool) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return "", false
	}

	u, err := url.Parse(videoURL)
	if err != nil {
		return "", false
	}
	if u.Scheme == "" {
		videoURL = "https://" + videoURL
		u, err = url.Parse(videoURL)
		if err != nil {
			return "", false
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" || !strings.Contains(u.Host, ".") {
		return "", false
	}

	return videoURL, true
}

// knownSelectors are the free-standing selector words the engine accepts.
var knownSelectors = []string{"best", "worst", "bestvideo", "bestaudio", "worstvideo", "worstaudio"}

// ValidateFormatSelector validates a format selector: a known selector
// word, a combinator expression ("/" or "+"), or a bare format identifier
// that starts with a number (e.g. "22", "137-dash").
func ValidateFormatSelector(selector string) bool {
	if len(selector) == 0 || len(selector) > 100 {
		return false
	}

	lower := strings.ToLower(selector)
	for _, known := range knownSelectors {
		if strings.Contains(lower, known) {
			return true
		}
	}
	if strings.ContainsAny(selector, "/+") {
		return true
	}

	// Specific format identifiers are numeric-prefixed
	head := selector
	if i := strings.IndexByte(selector, '-'); i > 0 {
		head = selector[:i]
	}
	if _, err := strconv.Atoi(head); err == nil {
		return true
	}

	return false
}

// SanitizeDownloadName reduces a title to a conservative character set:
// alphanumerics, space, hyphen and underscore. Everything else is dropped.
func SanitizeDownloadName(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
