package config

import (
	"os"
	"strconv"
	"strings"

	"videofetch/internal/model"

	"github.com/joho/godotenv"
)

// cookieCandidates are checked in order when COOKIES_FILE is not set.
var cookieCandidates = []string{
	"./cookies.txt",
	"./config/cookies.txt",
	"/etc/videofetch/cookies.txt",
}

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Server: model.ServerConfig{
			Port:    getEnvInt("PORT", 5000),
			Host:    getEnvStr("SERVER_HOST", "0.0.0.0"),
			Timeout: getEnvInt("SERVER_TIMEOUT", 300),
		},
		Engine: model.EngineConfig{
			Binary:           getEnvStr("YTDLP_BINARY", "yt-dlp"),
			SocketTimeout:    getEnvInt("ENGINE_SOCKET_TIMEOUT", 30),
			GeoBypassCountry: getEnvStr("GEO_BYPASS_COUNTRY", "US"),
			CookiesFile:      resolveCookiesFile(),
			RetryBackoffMS:   getEnvInt("RETRY_BACKOFF_MS", 500),
		},
		Workspace: model.WorkspaceConfig{
			Root:            getEnvStr("WORKSPACE_ROOT", os.TempDir()),
			JanitorInterval: getEnvInt("WORKSPACE_JANITOR_INTERVAL", 600),
			OrphanTTL:       getEnvInt("WORKSPACE_ORPHAN_TTL", 3600),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", "./log/app.log"),
		},
		RateLimit: model.RateLimitConfig{
			Enabled:           getEnvBool("RATELIMIT_ENABLED", true),
			RequestsPerWindow: getEnvInt("RATELIMIT_REQUESTS_PER_WINDOW", 10),
			WindowSeconds:     getEnvInt("RATELIMIT_WINDOW_SECONDS", 60),
		},
		Formats: model.FormatsConfig{
			MaxFormats: getEnvInt("MAX_FORMATS", 20),
		},
	}
}

// resolveCookiesFile returns the first cookie bundle path that exists.
// COOKIES_FILE takes precedence over the fixed candidate list. An empty
// result is a valid state: the catalog runs without credentials.
func resolveCookiesFile() string {
	if path := getEnvStr("COOKIES_FILE", ""); path != "" {
		return path
	}
	for _, candidate := range cookieCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
