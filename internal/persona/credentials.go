package persona

import (
	"os"

	"videofetch/pkg/logger"

	"go.uber.org/zap"
)

// CredentialBundle is an opaque handle to stored session credentials
// (a Netscape cookie jar on disk). Read-only after load.
type CredentialBundle struct {
	Path string
}

// LoadCredentials loads the credential bundle from the configured path.
// Absence is a valid state: a missing or unreadable bundle yields nil and
// a warning, never an error.
func LoadCredentials(path string) *CredentialBundle {
	if path == "" {
		logger.LogWarn("No credential bundle configured, running without cookies")
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		logger.LogWarn("Credential bundle not readable, running without cookies",
			zap.String("path", path), zap.Error(err))
		return nil
	}

	logger.LogInfo("Credential bundle loaded", zap.String("path", path))
	return &CredentialBundle{Path: path}
}
