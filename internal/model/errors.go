package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEngineUnavailable is returned when the extraction engine binary was
// not found at process start. All extraction operations fail fast with it.
var ErrEngineUnavailable = errors.New("extraction engine is not installed on the server")

// ExtractionError aggregates the per-persona failures of one extraction
// attempt. It is only produced once every persona has been tried.
type ExtractionError struct {
	Tried        []string // persona names, in attempt order
	Last         error    // last underlying engine error
	AuthRequired bool     // last error matched an auth/bot-detection marker
}

func (e *ExtractionError) Error() string {
	if e.AuthRequired {
		return "the platform requires sign-in or flagged the request as automated; " +
			"supply a cookies file to authenticate (last error: " + e.Last.Error() + ")"
	}
	return fmt.Sprintf("extraction failed after %d personas (%s): %v",
		len(e.Tried), strings.Join(e.Tried, ", "), e.Last)
}

func (e *ExtractionError) Unwrap() error { return e.Last }

// DownloadError wraps a download pipeline failure. The workspace is
// guaranteed destroyed before this propagates.
type DownloadError struct {
	Cause error
}

func (e *DownloadError) Error() string { return "download failed: " + e.Cause.Error() }

func (e *DownloadError) Unwrap() error { return e.Cause }

// authMarkers are substrings of engine error text that indicate an
// authentication challenge or bot-detection response. Matching is
// best-effort: the engine's error text is the only signal available.
var authMarkers = []string{
	"sign in",
	"login required",
	"confirm you're not a bot",
	"not a robot",
	"captcha",
	"bot",
	"account cookies",
	"use --cookies",
}

// IsAuthFailure reports whether an engine error message looks like an
// auth/bot-detection challenge.
func IsAuthFailure(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range authMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
