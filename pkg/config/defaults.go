package config

import (
	"strings"
	"time"
)

// Default values applied when the configuration omits a field.
const (
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultLogOutput       = "stdout"
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxUploadBytes  = 1 << 30 // 1GB
	DefaultSessionTTL      = 24 * time.Hour
	DefaultMountPath       = "/tmp/filegate/public"
)

// defaultSettings returns the scalar defaults registered with viper.
//
// Registering these keys lets FILEGATE_* environment variables override them
// even when no config file is present.
func defaultSettings() map[string]any {
	return map[string]any{
		"logging.level":           DefaultLogLevel,
		"logging.format":          DefaultLogFormat,
		"logging.output":          DefaultLogOutput,
		"server.host":             DefaultHost,
		"server.port":             DefaultPort,
		"server.read_timeout":     DefaultReadTimeout.String(),
		"server.write_timeout":    DefaultWriteTimeout.String(),
		"server.shutdown_timeout": DefaultShutdownTimeout.String(),
		"server.max_upload_bytes": DefaultMaxUploadBytes,
		"sessions.ttl":            DefaultSessionTTL.String(),
	}
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Grant and profile values are left exactly as written
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyMainPageDefaults(&cfg.MainPage)
	applySessionsDefaults(&cfg.Sessions)
	applyUserDefaults(cfg.Users)

	// Add a default public mount if none configured
	if len(cfg.Mounts) == 0 {
		cfg.Mounts = map[string]MountConfig{
			"public": {
				Path:        DefaultMountPath,
				Description: "Public files",
				Public:      true,
			},
		}
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	// Normalize log level to lowercase for consistent internal representation
	cfg.Level = strings.ToLower(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = DefaultLogFormat
	}
	if cfg.Output == "" {
		cfg.Output = DefaultLogOutput
	}

	// Rotation defaults only matter for file output
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 28
	}
}

// applyServerDefaults sets HTTP server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
}

// applyMainPageDefaults sets landing page defaults.
func applyMainPageDefaults(cfg *MainPageConfig) {
	if cfg.Title == "" {
		cfg.Title = "FileGate"
	}
	if cfg.Description == "" {
		cfg.Description = "Shared files"
	}
}

// applySessionsDefaults sets session store defaults.
func applySessionsDefaults(cfg *SessionsConfig) {
	// Path defaults to empty (in-memory sessions)

	if cfg.TTL == 0 {
		cfg.TTL = DefaultSessionTTL
	}
}

// applyUserDefaults sets per-user defaults.
func applyUserDefaults(users map[string]UserConfig) {
	for name, user := range users {
		if user.Algorithm == "" {
			user.Algorithm = "argon2"
			users[name] = user
		}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
