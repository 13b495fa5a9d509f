package model

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Workspace WorkspaceConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Formats   FormatsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    int
	Host    string
	Timeout int // seconds
}

// EngineConfig holds extraction engine configuration
type EngineConfig struct {
	Binary           string // yt-dlp executable name or path
	SocketTimeout    int    // seconds, passed through to the engine
	GeoBypassCountry string
	CookiesFile      string // resolved credential bundle path, empty when none found
	RetryBackoffMS   int    // flat delay between persona attempts
}

// WorkspaceConfig holds per-request workspace configuration
type WorkspaceConfig struct {
	Root            string // parent directory for download workspaces
	JanitorInterval int    // seconds between orphan sweeps
	OrphanTTL       int    // seconds before an untracked workspace dir is swept
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string
}

// RateLimitConfig holds fixed-window rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	WindowSeconds     int
}

// FormatsConfig holds format list shaping configuration
type FormatsConfig struct {
	MaxFormats int // cap on the ranked format list returned to clients
}
