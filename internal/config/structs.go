package config

type Config struct {
	// App: Global application metadata
	App InConfigAppConfig `mapstructure:"app"`

	// Server: Network configuration and execution environment
	Server ServerConfig `mapstructure:"server"`

	// Database: SQLite engine parameters
	Database DatabaseConfig `mapstructure:"database"`

	// Upload: Constraints and layout for user image uploads
	Upload UploadConfig `mapstructure:"upload"`

	// Session: Signed-cookie session settings
	Session SessionConfig `mapstructure:"session"`

	// Security: CORS whitelist and rate limiting
	Security SecurityConfig `mapstructure:"security"`

	// BaseURL: The public-facing root URL used for absolute link generation
	BaseURL string `mapstructure:"base_url"`
}

type InConfigAppConfig struct {
	// Name: Identity of the service used in logs and the health endpoint
	Name string `mapstructure:"name"`

	// Version: Application semantic version (e.g., "0.1.0")
	Version string `mapstructure:"version"`
}

type ServerConfig struct {
	// Port: The TCP port the HTTP server will bind to (default: 8980)
	Port int `mapstructure:"port"`

	// Env: Execution context (development, staging, production)
	Env string `mapstructure:"env"`
}

type DatabaseConfig struct {
	// Path: Physical location of the SQLite database file (e.g., ./data/sprout.db)
	Path string `mapstructure:"path"`
}

type UploadConfig struct {
	// PublicDir: Root of the statically served directory tree (default: "public")
	PublicDir string `mapstructure:"public_dir"`

	// MaxSize: Maximum accepted image payload (e.g., "10MB")
	MaxSize string `mapstructure:"max_size"`
}

type SessionConfig struct {
	// Secret: HMAC key for session cookie signing. Must not be the default in production.
	Secret string `mapstructure:"secret"`

	// MaxAge: Cookie lifetime as a Go duration (e.g., "168h" for 7 days)
	MaxAge string `mapstructure:"max_age"`
}

type SecurityConfig struct {
	// CorsOrigins: List of allowed domains for browser-based cross-origin requests
	CorsOrigins []string `mapstructure:"cors_origins"`

	// RateLimit: per-IP token-bucket limiting for the API surface
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	// Enabled: Global toggle for the rate limiting middleware
	Enabled bool `mapstructure:"enabled"`

	// Requests: Number of allowed requests per time window
	Requests int `mapstructure:"requests"`

	// Window: The timeframe for the request limit (e.g., "1s", "1m")
	Window string `mapstructure:"window"`

	// Burst: Temporary allowed spike capacity above the steady-rate limit
	Burst int `mapstructure:"burst"`
}
