package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"videofetch/internal/engine"
	"videofetch/internal/model"
	"videofetch/internal/persona"
	"videofetch/internal/workspace"
	"videofetch/pkg/logger"
	"videofetch/pkg/validator"

	"go.uber.org/zap"
)

const (
	audioTargetFormat  = "mp3"
	audioTargetQuality = "192K"
)

// DownloadResult is a resolved download. The workspace exclusively owns
// the file; the caller must call Workspace.Release() exactly once after
// streaming it, on every exit path.
type DownloadResult struct {
	FilePath     string
	DownloadName string
	Workspace    *workspace.Workspace
}

// DownloadService runs the download pipeline: scoped workspace, persona
// retry, optional audio post-processing, guaranteed cleanup on failure.
type DownloadService struct {
	engine     engine.Engine
	catalog    *persona.Catalog
	workspaces *workspace.Manager
	cfg        *model.EngineConfig
}

// NewDownloadService creates a new download service
func NewDownloadService(eng engine.Engine, catalog *persona.Catalog, wm *workspace.Manager, cfg *model.EngineConfig) *DownloadService {
	return &DownloadService{
		engine:     eng,
		catalog:    catalog,
		workspaces: wm,
		cfg:        cfg,
	}
}

// Download fetches the requested format into a fresh workspace. On any
// failure the workspace is destroyed before the error propagates; on
// success the caller owns the release.
func (s *DownloadService) Download(ctx context.Context, req *model.DownloadRequest) (*DownloadResult, error) {
	if !s.engine.Available() {
		return nil, model.ErrEngineUnavailable
	}

	ws, err := s.workspaces.Acquire()
	if err != nil {
		return nil, &model.DownloadError{Cause: err}
	}

	result, err := s.downloadInto(ctx, ws, req)
	if err != nil {
		ws.Release()
		return nil, err
	}
	return result, nil
}

func (s *DownloadService) downloadInto(ctx context.Context, ws *workspace.Workspace, req *model.DownloadRequest) (*DownloadResult, error) {
	transcode := req.TranscodeToAudio()

	selector := req.FormatID
	if transcode {
		// Audio rips always pull the best audio track; the post-processor
		// produces the target container.
		selector = "bestaudio/best"
	}

	var (
		reportedPath string
		info         *engine.RawInfo
	)
	// Downloads reuse the same sequential persona retry as metadata.
	_, err := attemptPersonas(ctx, s.catalog.List(), s.backoff(), func(p persona.Persona) error {
		// A failed earlier attempt may have left partial files behind;
		// the output resolution below must only ever see this attempt's.
		if err := clearWorkspace(ws.Dir); err != nil {
			return err
		}

		opts := buildPersonaOptions(p, s.cfg)
		opts.Format = selector
		opts.OutputTemplate = filepath.Join(ws.Dir, "%(title)s.%(ext)s")
		if transcode {
			opts.ExtractAudio = true
			opts.AudioFormat = audioTargetFormat
			opts.AudioQuality = audioTargetQuality
		}

		path, rawInfo, err := s.engine.ExtractAndDownload(ctx, req.URL, opts)
		if err != nil {
			return err
		}
		reportedPath = path
		info = rawInfo
		return nil
	})
	if err != nil {
		var extractionErr *model.ExtractionError
		if errors.As(err, &extractionErr) {
			return nil, &model.DownloadError{Cause: err}
		}
		return nil, err
	}

	filePath, err := s.resolveOutput(ws, reportedPath, transcode)
	if err != nil {
		return nil, &model.DownloadError{Cause: err}
	}

	title := ""
	if info != nil {
		title = info.Title
	}
	result := &DownloadResult{
		FilePath:     filePath,
		DownloadName: downloadName(title, filePath),
		Workspace:    ws,
	}

	logger.LogInfo("Download completed",
		zap.String("url", req.URL),
		zap.String("file", result.DownloadName),
		zap.String("workspace", ws.ID))
	return result, nil
}

// resolveOutput locates the produced file. The engine reports the
// pre-post-processing name, so an audio rip needs its extension replaced
// before the path is checked. When the path is still missing (silent
// post-processor failure, unexpected naming) the workspace is scanned for
// the single remaining non-hidden file.
func (s *DownloadService) resolveOutput(ws *workspace.Workspace, reportedPath string, transcode bool) (string, error) {
	path := reportedPath
	if transcode && path != "" {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + "." + audioTargetFormat
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	entries, err := os.ReadDir(ws.Dir)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || partialFile(entry.Name()) {
			continue
		}
		candidates = append(candidates, filepath.Join(ws.Dir, entry.Name()))
	}

	switch len(candidates) {
	case 0:
		return "", errors.New("output not found")
	case 1:
		return candidates[0], nil
	default:
		return "", errors.New("multiple output candidates in workspace")
	}
}

// partialFile reports whether a workspace entry is a hidden file or an
// engine intermediate. The engine suffixes partials rather than dot-
// prefixing them, so both shapes are checked.
func partialFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, suffix := range []string{".part", ".ytdl", ".temp"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// clearWorkspace removes all entries from the workspace directory.
func clearWorkspace(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// downloadName builds the client-visible attachment name: sanitized title
// plus the actual file extension, falling back to the resolved base name.
func downloadName(title, filePath string) string {
	base := validator.SanitizeDownloadName(title)
	if base == "" {
		return filepath.Base(filePath)
	}
	return base + filepath.Ext(filePath)
}

func (s *DownloadService) backoff() time.Duration {
	return time.Duration(s.cfg.RetryBackoffMS) * time.Millisecond
}
