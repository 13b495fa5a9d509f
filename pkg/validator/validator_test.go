package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"https url", "https://example.com/watch?v=abc", "https://example.com/watch?v=abc", true},
		{"http url", "http://example.com/v", "http://example.com/v", true},
		{"schemeless", "example.com/watch?v=abc", "https://example.com/watch?v=abc", true},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
		{"no host", "https://", "", false},
		{"bad scheme", "ftp://example.com/v", "", false},
		{"not a url", "just some words", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeURL(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidateFormatSelector(t *testing.T) {
	tests := []struct {
		selector string
		valid    bool
	}{
		{"best", true},
		{"bestaudio", true},
		{"worstvideo", true},
		{"bestvideo+bestaudio", true},
		{"bestvideo[height<=720]/best", true},
		{"22", true},
		{"137-dash", true},
		{"", false},
		{"garbage", false},
		{"DROP TABLE", false},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateFormatSelector(tt.selector))
		})
	}
}

func TestSanitizeDownloadName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation stripped", "My <Video>!! 2024", "My Video 2024"},
		{"keeps dash underscore", "clip_part-2", "clip_part-2"},
		{"unicode dropped", "видео mix", "mix"},
		{"all stripped", "???!!!", ""},
		{"trims edges", "  edge  ", "edge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDownloadName(tt.input))
		})
	}
}
