package handler

import (
	"errors"
	"net/http"
	"time"

	"videofetch/internal/engine"
	"videofetch/internal/model"
	"videofetch/internal/service"
	"videofetch/pkg/logger"
	"videofetch/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is the reported service version.
const Version = "1.0"

// VideoHandler handles metadata and status requests
type VideoHandler struct {
	extractService *service.ExtractService
	rateLimits     *service.RateLimitService
	engine         engine.Engine
	startedAt      time.Time
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(es *service.ExtractService, rls *service.RateLimitService, eng engine.Engine) *VideoHandler {
	return &VideoHandler{
		extractService: es,
		rateLimits:     rls,
		engine:         eng,
		startedAt:      time.Now(),
	}
}

// GetVideoInfo handles GET /api/video-info
func (h *VideoHandler) GetVideoInfo(c *gin.Context) {
	videoURL, ok := validator.NormalizeURL(c.Query("url"))
	if !ok {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "url parameter is required and must be a valid URL",
		})
		return
	}

	info, err := h.extractService.FetchMetadata(c.Request.Context(), videoURL)
	if err != nil {
		logger.LogError("Failed to fetch video info", err, zap.String("url", videoURL))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: extractionMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetFormats handles GET /api/formats
func (h *VideoHandler) GetFormats(c *gin.Context) {
	videoURL, ok := validator.NormalizeURL(c.Query("url"))
	if !ok {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "url parameter is required and must be a valid URL",
		})
		return
	}

	listing, err := h.extractService.FetchFormats(c.Request.Context(), videoURL)
	if err != nil {
		logger.LogError("Failed to list formats", err, zap.String("url", videoURL))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: extractionMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// extractionMessage maps an extraction failure to client-facing text
// without leaking internals beyond the engine's own error line.
func extractionMessage(err error) string {
	if errors.Is(err, model.ErrEngineUnavailable) {
		return model.ErrEngineUnavailable.Error()
	}
	var extractionErr *model.ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.Error()
	}
	return "failed to fetch video information"
}

// HealthCheck handles GET /api/health
func (h *VideoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"server":           "videofetch",
		"engine_available": h.engine.Available(),
		"timestamp":        time.Now().Format(time.RFC3339),
		"version":          Version,
		"features": []string{
			"video_info",
			"download",
			"format_listing",
			"rate_limiting",
		},
	})
}

// Stats handles GET /api/stats
func (h *VideoHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"uptime_seconds":  int(time.Since(h.startedAt).Seconds()),
			"tracked_clients": h.rateLimits.TrackedClients(),
			"version":         Version,
		},
	})
}

// Root handles GET /
func (h *VideoHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":          "videofetch",
		"status":           "ok",
		"version":          Version,
		"engine_available": h.engine.Available(),
		"endpoints": []string{
			"/api/video-info",
			"/api/formats",
			"/api/download",
			"/api/health",
			"/api/stats",
		},
	})
}
