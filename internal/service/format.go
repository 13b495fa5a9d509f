package service

import (
	"sort"

	"videofetch/internal/engine"
	"videofetch/internal/model"
)

// DefaultMaxFormats caps the ranked format list returned to clients.
const DefaultMaxFormats = 20

// skippedProtocols are segmented-streaming transports the service does not
// support as direct downloads. m3u8 variants are matched by prefix.
var skippedProtocols = map[string]bool{
	"http_dash_segments": true,
	"dash":               true,
	"ism":                true,
	"f4m":                true,
}

// NormalizeFormats converts the engine's raw format records into the
// canonical ranked list. Pure and deterministic: identical input always
// yields identical output, ties keep the engine's original order.
func NormalizeFormats(raw []engine.RawFormat, maxFormats int) []model.FormatDescriptor {
	if maxFormats <= 0 {
		maxFormats = DefaultMaxFormats
	}

	formats := make([]model.FormatDescriptor, 0, len(raw))
	for _, f := range raw {
		if segmentedProtocol(f.Protocol) {
			continue
		}

		vcodec := codecOrNone(f.VCodec)
		acodec := codecOrNone(f.ACodec)
		if vcodec == model.CodecNone && acodec == model.CodecNone {
			continue
		}

		// Exact size preferred, approximate accepted, 0 means unknown.
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}

		resolution := f.Resolution
		quality := 0
		if vcodec == model.CodecNone {
			resolution = model.AudioOnly
		} else {
			quality = f.Height
		}

		formats = append(formats, model.FormatDescriptor{
			FormatID:   f.FormatID,
			Extension:  f.Ext,
			FileSize:   size,
			Resolution: resolution,
			Quality:    quality,
			VideoCodec: vcodec,
			AudioCodec: acodec,
			FormatNote: f.FormatNote,
		})
	}

	sort.SliceStable(formats, func(i, j int) bool {
		return formats[i].Quality > formats[j].Quality
	})

	if len(formats) > maxFormats {
		formats = formats[:maxFormats]
	}
	return formats
}

// DescribeFormats maps every raw record verbatim for the format-listing
// endpoint: no protocol filter, no codec invariant, no ranking, no cap.
// Only the codec sentinels, the size fallback and the audio-only label
// are applied so the records read the same as normalized ones.
func DescribeFormats(raw []engine.RawFormat) []model.FormatDescriptor {
	formats := make([]model.FormatDescriptor, 0, len(raw))
	for _, f := range raw {
		vcodec := codecOrNone(f.VCodec)
		acodec := codecOrNone(f.ACodec)

		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}

		resolution := f.Resolution
		quality := 0
		if vcodec == model.CodecNone {
			resolution = model.AudioOnly
		} else {
			quality = f.Height
		}

		formats = append(formats, model.FormatDescriptor{
			FormatID:   f.FormatID,
			Extension:  f.Ext,
			FileSize:   size,
			Resolution: resolution,
			Quality:    quality,
			VideoCodec: vcodec,
			AudioCodec: acodec,
			FormatNote: f.FormatNote,
		})
	}
	return formats
}

func segmentedProtocol(protocol string) bool {
	if len(protocol) >= 4 && protocol[:4] == "m3u8" {
		return true
	}
	return skippedProtocols[protocol]
}

func codecOrNone(codec string) string {
	if codec == "" {
		return model.CodecNone
	}
	return codec
}
