package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sprout/pkg/logger"
)

var AppConfig *Config

func (c *Config) GetBaseUrl() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

func Load() {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SPROUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database.path", "SPROUT_DATABASE_PATH")
	v.BindEnv("session.secret", "SPROUT_SESSION_SECRET")
	v.BindEnv("server.port", "APP_PORT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.LogInfo("Config file not found. Using Environment Variables and Defaults.")
		} else {
			logger.LogWarn("Config file found but unreadable: %v", err)
		}
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("[CRITICAL] Error: Failed to parse configuration: %v", err)
	}

	AppConfig.BaseURL = AppConfig.GetBaseUrl()

	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("[FATAL] CONFIGURATION ERROR: %v", err)
	}

	logger.LogInfo("⚙️  %s v%s Initialized | Env: %s | Port: %d",
		AppConfig.App.Name,
		AppConfig.App.Version,
		AppConfig.Server.Env,
		AppConfig.Server.Port,
	)
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "Sprout")
	v.SetDefault("app.version", "0.1.0")

	// Server
	v.SetDefault("server.port", 8980)
	v.SetDefault("server.env", "development")

	// Database
	v.SetDefault("database.path", "./data/sprout.db")

	// Uploads
	v.SetDefault("upload.public_dir", "public")
	v.SetDefault("upload.max_size", "10MB")

	// Session
	v.SetDefault("session.secret", "secret")
	v.SetDefault("session.max_age", "168h") // 7 days

	// Security & Limits
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests", 20)
	v.SetDefault("security.rate_limit.window", "1s")
	v.SetDefault("security.rate_limit.burst", 50)
}

func (c *Config) Validate() error {
	// Session secret check: the signed cookie is only as strong as this key.
	if c.Session.Secret == "" || c.Session.Secret == "secret" {
		if c.Server.Env == "production" {
			return fmt.Errorf("session.secret cannot be default or empty in production environment")
		}
		logger.LogWarn("Security Alert: Using unsafe default session secret. Do not use this in production!")
	}

	if _, err := time.ParseDuration(c.Session.MaxAge); err != nil {
		return fmt.Errorf("invalid session.max_age format '%s': %v", c.Session.MaxAge, err)
	}

	if _, err := time.ParseDuration(c.Security.RateLimit.Window); err != nil {
		return fmt.Errorf("invalid rate_limit.window format '%s': %v", c.Security.RateLimit.Window, err)
	}

	return nil
}

// SessionMaxAge returns the parsed cookie lifetime. Validate() has already
// checked the format, so a zero fallback here only covers direct struct use in tests.
func (c *Config) SessionMaxAge() time.Duration {
	d, err := time.ParseDuration(c.Session.MaxAge)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}
