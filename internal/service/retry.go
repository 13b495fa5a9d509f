package service

import (
	"context"
	"errors"
	"time"

	"videofetch/internal/engine"
	"videofetch/internal/model"
	"videofetch/internal/persona"
	"videofetch/pkg/logger"

	"go.uber.org/zap"
)

// attemptPersonas runs attempt for each persona in catalog order, stopping
// at the first success. Attempts are strictly sequential; a flat backoff
// separates them so total latency stays bounded. When every persona fails
// the last error is classified into an ExtractionError.
func attemptPersonas(ctx context.Context, personas []persona.Persona, backoff time.Duration,
	attempt func(p persona.Persona) error) (*persona.Persona, error) {

	if len(personas) == 0 {
		return nil, &model.ExtractionError{Last: errors.New("no personas configured")}
	}

	var lastErr error
	tried := make([]string, 0, len(personas))

	for i := range personas {
		p := personas[i]
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tried = append(tried, p.Name)
		err := attempt(p)
		if err == nil {
			logger.LogInfo("Persona attempt succeeded",
				zap.String("persona", p.Name), zap.Int("attempt", len(tried)))
			return &p, nil
		}

		lastErr = err
		logger.LogWarn("Persona attempt failed",
			zap.String("persona", p.Name), zap.Error(err))

		if i < len(personas)-1 && backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, &model.ExtractionError{
		Tried:        tried,
		Last:         lastErr,
		AuthRequired: model.IsAuthFailure(lastErr.Error()),
	}
}

// buildPersonaOptions merges a persona with the universal engine options.
func buildPersonaOptions(p persona.Persona, cfg *model.EngineConfig) engine.Options {
	opts := engine.Options{
		UserAgent:        p.UserAgent,
		Headers:          p.Headers,
		PlayerClient:     p.Client,
		GeoBypass:        p.GeoBypass,
		GeoBypassCountry: cfg.GeoBypassCountry,
		NoPlaylist:       true,
		SocketTimeout:    cfg.SocketTimeout,
	}
	if p.Credentials != nil {
		opts.CookiesFile = p.Credentials.Path
	}
	return opts
}
