// Package engine wraps the external extraction engine (yt-dlp) behind an
// interface. The engine is a black box: it fetches, parses and downloads
// media; this package only builds its option set and decodes its output.
package engine

import (
	"context"

	"videofetch/internal/persona"
)

// Options is the engine option set for one extraction call, merged from a
// persona and the universal options.
type Options struct {
	Format           string // format selector, download only
	OutputTemplate   string // output path template, download only
	UserAgent        string
	Headers          []persona.Header
	CookiesFile      string
	PlayerClient     string
	GeoBypass        bool
	GeoBypassCountry string
	NoPlaylist       bool
	SocketTimeout    int // seconds
	ExtractAudio     bool
	AudioFormat      string // target container when ExtractAudio is set
	AudioQuality     string // target bitrate when ExtractAudio is set
}

// Engine is the external extraction collaborator.
type Engine interface {
	// ExtractMetadata fetches video metadata without downloading.
	ExtractMetadata(ctx context.Context, url string, opts Options) (*RawInfo, error)
	// ExtractAndDownload downloads the requested format and returns the
	// engine-reported output path (pre post-processing) plus metadata.
	ExtractAndDownload(ctx context.Context, url string, opts Options) (string, *RawInfo, error)
	// Available reports whether the engine dependency is present.
	Available() bool
}

// RawInfo is the engine's metadata record as decoded from its JSON output.
type RawInfo struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Thumbnail  string      `json:"thumbnail"`
	Duration   *float64    `json:"duration"`
	Channel    string      `json:"channel"`
	Uploader   string      `json:"uploader"`
	ViewCount  int64       `json:"view_count"`
	WebpageURL string      `json:"webpage_url"`
	Formats    []RawFormat `json:"formats"`

	Filename    string `json:"filename"`
	OldFilename string `json:"_filename"`
	Requested   []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// PreparedFilename returns the engine's best notion of the produced file
// path. Note this is the pre-post-processing name: an audio-extraction
// step will have changed the extension afterwards.
func (i *RawInfo) PreparedFilename() string {
	for _, rd := range i.Requested {
		if rd.Filepath != "" {
			return rd.Filepath
		}
	}
	if i.Filename != "" {
		return i.Filename
	}
	return i.OldFilename
}

// ChannelName returns the channel, falling back to the uploader field.
func (i *RawInfo) ChannelName() string {
	if i.Channel != "" {
		return i.Channel
	}
	return i.Uploader
}

// RawFormat is one per-format record from the engine.
type RawFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Protocol       string  `json:"protocol"`
	Resolution     string  `json:"resolution"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	FormatNote     string  `json:"format_note"`
	Fps            float64 `json:"fps"`
}
