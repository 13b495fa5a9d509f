package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"videofetch/internal/model"
	"videofetch/internal/service"
	"videofetch/pkg/logger"
	"videofetch/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DownloadHandler handles download requests
type DownloadHandler struct {
	downloadService *service.DownloadService
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(ds *service.DownloadService) *DownloadHandler {
	return &DownloadHandler{downloadService: ds}
}

// Download handles GET /api/download
func (h *DownloadHandler) Download(c *gin.Context) {
	videoURL, ok := validator.NormalizeURL(c.Query("url"))
	if !ok {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "url parameter is required and must be a valid URL",
		})
		return
	}

	formatID := c.DefaultQuery("format_id", "best")
	if !validator.ValidateFormatSelector(formatID) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "invalid format selector",
		})
		return
	}

	req := &model.DownloadRequest{URL: videoURL, FormatID: formatID}
	result, err := h.downloadService.Download(c.Request.Context(), req)
	if err != nil {
		logger.LogError("Download failed", err,
			zap.String("url", videoURL), zap.String("format_id", formatID))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: downloadMessage(err),
		})
		return
	}
	// Workspace teardown after the payload is written; failures inside
	// Release are logged, never surfaced.
	defer result.Workspace.Release()

	stat, err := os.Stat(result.FilePath)
	if err != nil {
		logger.LogError("Downloaded file not readable", err, zap.String("path", result.FilePath))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: "download failed: output not found",
		})
		return
	}

	c.Header("Content-Disposition", buildContentDispositionHeader(result.DownloadName))
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", fmt.Sprintf("%d", stat.Size()))
	c.File(result.FilePath)

	logger.LogInfo("File served",
		zap.String("filename", result.DownloadName),
		zap.Int64("size", stat.Size()))
}

func downloadMessage(err error) string {
	if errors.Is(err, model.ErrEngineUnavailable) {
		return model.ErrEngineUnavailable.Error()
	}
	var downloadErr *model.DownloadError
	if errors.As(err, &downloadErr) {
		return downloadErr.Error()
	}
	return "download failed"
}

// buildContentDispositionHeader builds a proper Content-Disposition header
// with RFC 5987 encoding for unicode and special characters
func buildContentDispositionHeader(filename string) string {
	needsEncoding := false
	for _, r := range filename {
		if r > 127 || r == '"' || r == '\\' || r == ';' || r == ',' {
			needsEncoding = true
			break
		}
	}

	if !needsEncoding {
		return fmt.Sprintf(`attachment; filename="%s"`, filename)
	}

	encodedFilename := url.QueryEscape(filename)
	encodedFilename = strings.ReplaceAll(encodedFilename, "+", "%20")
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, encodedFilename)
}
