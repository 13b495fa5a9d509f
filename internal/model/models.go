package model

import "strings"

// VideoInfo contains metadata about a video
type VideoInfo struct {
	URL             string             `json:"url"`
	VideoID         string             `json:"video_id"`
	Title           string             `json:"title"`
	ThumbnailURL    string             `json:"thumbnail_url"`
	Duration        *int               `json:"duration"` // seconds, null when unknown
	Channel         string             `json:"channel"`
	ViewCount       int64              `json:"view_count"`
	Formats         []FormatDescriptor `json:"formats"`
	UsedCredentials bool               `json:"used_credentials"`
}

// FormatDescriptor represents one downloadable representation of a video.
// FormatID is opaque and used verbatim as the download selector.
type FormatDescriptor struct {
	FormatID   string `json:"format_id"`
	Extension  string `json:"ext"`
	FileSize   int64  `json:"file_size"` // bytes, 0 when unknown
	Resolution string `json:"resolution"`
	Quality    int    `json:"quality"` // vertical resolution rank, 0 for audio-only
	VideoCodec string `json:"video_codec"`
	AudioCodec string `json:"audio_codec"`
	FormatNote string `json:"format_note,omitempty"`
}

// AudioOnly is the resolution label for formats without a video track.
const AudioOnly = "audio only"

// CodecNone marks an absent audio or video track.
const CodecNone = "none"

// FormatListing is the full, unfiltered format inventory of a video.
// Unlike VideoInfo.Formats it keeps every record the engine reported,
// in engine order, with no ranking or cap.
type FormatListing struct {
	Success bool               `json:"success"`
	VideoID string             `json:"video_id"`
	Total   int                `json:"total"`
	Formats []FormatDescriptor `json:"formats"`
}

// DownloadRequest represents a user's download request
type DownloadRequest struct {
	URL      string
	FormatID string
}

// TranscodeToAudio reports whether the selector asks for an audio rip:
// the selector text mentions audio or ends in an audio container extension.
func (r *DownloadRequest) TranscodeToAudio() bool {
	selector := strings.ToLower(r.FormatID)
	if strings.Contains(selector, "audio") {
		return true
	}
	for _, ext := range audioExtensions {
		if strings.HasSuffix(selector, ext) {
			return true
		}
	}
	return false
}

var audioExtensions = []string{".mp3", ".m4a", ".opus", ".ogg", ".aac", ".wav"}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"` // seconds, rate-limit rejections only
}
