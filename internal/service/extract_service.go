package service

import (
	"context"
	"time"

	"videofetch/internal/engine"
	"videofetch/internal/model"
	"videofetch/internal/persona"
	"videofetch/pkg/logger"

	"go.uber.org/zap"
)

// ExtractService fetches video metadata by trying extraction personas in
// catalog order until one succeeds.
type ExtractService struct {
	engine     engine.Engine
	catalog    *persona.Catalog
	cfg        *model.EngineConfig
	maxFormats int
}

// NewExtractService creates a new extract service
func NewExtractService(eng engine.Engine, catalog *persona.Catalog, cfg *model.EngineConfig, maxFormats int) *ExtractService {
	return &ExtractService{
		engine:     eng,
		catalog:    catalog,
		cfg:        cfg,
		maxFormats: maxFormats,
	}
}

// FetchMetadata extracts video metadata, first persona success wins.
func (s *ExtractService) FetchMetadata(ctx context.Context, videoURL string) (*model.VideoInfo, error) {
	if !s.engine.Available() {
		return nil, model.ErrEngineUnavailable
	}

	var raw *engine.RawInfo
	winner, err := attemptPersonas(ctx, s.catalog.List(), s.backoff(), func(p persona.Persona) error {
		info, err := s.engine.ExtractMetadata(ctx, videoURL, buildPersonaOptions(p, s.cfg))
		if err != nil {
			return err
		}
		raw = info
		return nil
	})
	if err != nil {
		return nil, err
	}

	info := s.assembleInfo(videoURL, raw, winner)
	logger.LogInfo("Video info retrieved",
		zap.String("title", info.Title),
		zap.String("persona", winner.Name),
		zap.Int("formats", len(info.Formats)))
	return info, nil
}

// FetchFormats lists every format the engine reports for a video,
// unfiltered, using the same persona retry as FetchMetadata.
func (s *ExtractService) FetchFormats(ctx context.Context, videoURL string) (*model.FormatListing, error) {
	if !s.engine.Available() {
		return nil, model.ErrEngineUnavailable
	}

	var raw *engine.RawInfo
	_, err := attemptPersonas(ctx, s.catalog.List(), s.backoff(), func(p persona.Persona) error {
		info, err := s.engine.ExtractMetadata(ctx, videoURL, buildPersonaOptions(p, s.cfg))
		if err != nil {
			return err
		}
		raw = info
		return nil
	})
	if err != nil {
		return nil, err
	}

	formats := DescribeFormats(raw.Formats)
	return &model.FormatListing{
		Success: true,
		VideoID: raw.ID,
		Total:   len(formats),
		Formats: formats,
	}, nil
}

func (s *ExtractService) assembleInfo(videoURL string, raw *engine.RawInfo, winner *persona.Persona) *model.VideoInfo {
	originURL := raw.WebpageURL
	if originURL == "" {
		originURL = videoURL
	}

	var duration *int
	if raw.Duration != nil && *raw.Duration >= 0 {
		seconds := int(*raw.Duration)
		duration = &seconds
	}

	return &model.VideoInfo{
		URL:             originURL,
		VideoID:         raw.ID,
		Title:           raw.Title,
		ThumbnailURL:    raw.Thumbnail,
		Duration:        duration,
		Channel:         raw.ChannelName(),
		ViewCount:       raw.ViewCount,
		Formats:         NormalizeFormats(raw.Formats, s.maxFormats),
		UsedCredentials: winner.Credentials != nil,
	}
}

func (s *ExtractService) backoff() time.Duration {
	return time.Duration(s.cfg.RetryBackoffMS) * time.Millisecond
}
