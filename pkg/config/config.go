package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/marmos91/filegate/pkg/access"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the complete FileGate configuration.
//
// This structure captures all configurable aspects of the FileGate server
// including:
//   - Logging configuration
//   - HTTP server settings
//   - Landing page content
//   - Session store settings
//   - User accounts and group membership
//   - Mount definitions with per-user and per-group grants
//   - Named permission profiles referenced from grants
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (FILEGATE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Grant Value Pattern:
// Per-user and per-group grant values accept either a single comma-separated
// string or a list of strings. Both shapes decode into access.GrantSpec,
// which remembers the shape so a saved configuration keeps the form the
// author wrote.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains HTTP server settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// MainPage describes the landing page shown at the site root
	MainPage MainPageConfig `mapstructure:"main_page" yaml:"main_page"`

	// Sessions configures the session token store
	Sessions SessionsConfig `mapstructure:"sessions" yaml:"sessions"`

	// Users maps usernames to their account configuration
	Users map[string]UserConfig `mapstructure:"users" yaml:"users" validate:"dive"`

	// Mounts maps mount names to their directory and grant configuration
	Mounts map[string]MountConfig `mapstructure:"mounts" yaml:"mounts" validate:"dive"`

	// Profiles defines named permission bundles referenced by grant tokens
	Profiles map[string]access.Profile `mapstructure:"profiles" yaml:"profiles,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: trace, debug, info, warn, error (case-insensitive)
	Level string `mapstructure:"level" yaml:"level" validate:"required"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`

	// MaxSizeMB is the maximum size of a log file before rotation
	// Only used when Output is a file path
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb,omitempty"`

	// MaxBackups is the number of rotated log files to keep
	// Only used when Output is a file path
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups,omitempty"`

	// MaxAgeDays is the maximum age of a rotated log file in days
	// Only used when Output is a file path
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the address to bind to
	Host string `mapstructure:"host" yaml:"host" validate:"required"`

	// Port is the TCP port to listen on
	Port int `mapstructure:"port" yaml:"port" validate:"required,gt=0,lte=65535"`

	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"required,gt=0"`

	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"required,gt=0"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`

	// MaxUploadBytes caps the size of a single upload request body
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes" validate:"required,gt=0"`
}

// MainPageConfig describes the landing page shown at the site root.
type MainPageConfig struct {
	// Title is the page and site title
	Title string `mapstructure:"title" yaml:"title"`

	// Description is a short text shown under the title
	Description string `mapstructure:"description" yaml:"description"`

	// MarkdownFile is an optional path to a markdown file rendered on the
	// landing page below the mount listing
	MarkdownFile string `mapstructure:"markdown_file" yaml:"markdown_file,omitempty"`
}

// SessionsConfig configures the session token store.
type SessionsConfig struct {
	// Path is the directory for the on-disk session database.
	// Empty means sessions are kept in memory and lost on restart.
	Path string `mapstructure:"path" yaml:"path,omitempty"`

	// TTL is how long a session token stays valid after login
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"required,gt=0"`

	// CookieSecure marks the session cookie as HTTPS-only
	CookieSecure bool `mapstructure:"cookie_secure" yaml:"cookie_secure"`
}

// UserConfig defines a single user account.
type UserConfig struct {
	// Password is the stored credential, interpreted per Algorithm
	Password string `mapstructure:"password" yaml:"password" validate:"required"`

	// Algorithm names the password hashing scheme
	// Valid values: argon2, bcrypt, sha256, plain
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm" validate:"required,oneof=argon2 bcrypt sha256 plain"`

	// Groups lists the groups this user belongs to
	Groups []string `mapstructure:"groups" yaml:"groups,omitempty"`
}

// MountConfig defines a single shared directory.
type MountConfig struct {
	// Path is the directory on disk exposed by this mount.
	// It is created and canonicalized at startup.
	Path string `mapstructure:"path" yaml:"path" validate:"required"`

	// Description is shown next to the mount in listings
	Description string `mapstructure:"description" yaml:"description,omitempty"`

	// Public grants read access to anonymous visitors
	Public bool `mapstructure:"public" yaml:"public"`

	// Users maps usernames to their grant for this mount
	Users map[string]access.GrantSpec `mapstructure:"users" yaml:"users,omitempty"`

	// Groups maps group names to their grant for this mount
	Groups map[string]access.GrantSpec `mapstructure:"groups" yaml:"groups,omitempty"`
}

// Grants converts the mount's access fields into an access.Grants value.
func (m MountConfig) Grants() access.Grants {
	return access.Grants{
		Public: m.Public,
		Users:  m.Users,
		Groups: m.Groups,
	}
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FILEGATE_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Decode into config struct with grant and profile conversion
	var cfg Config
	if err := decodeSettings(v.AllSettings(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use FILEGATE_ prefix and underscores
	// Example: FILEGATE_LOGGING_LEVEL=debug
	v.SetEnvPrefix("FILEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register scalar keys so AutomaticEnv can override them even when the
	// config file omits them
	for key, value := range defaultSettings() {
		v.SetDefault(key, value)
	}

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/filegate/config.yaml
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return nil
		}
		if os.IsNotExist(err) {
			// Explicit path that does not exist falls back to defaults too
			return nil
		}
		// Other errors are problems
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// decodeSettings decodes untyped viper settings into the config struct.
//
// Grant values (string or list of strings) and profiles (map of action to
// boolean) need custom conversion, so decoding goes through mapstructure
// directly with dedicated decode hooks.
func decodeSettings(settings map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			grantSpecDecodeHook,
			profileDecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		// Environment overrides arrive as strings, so numeric fields need
		// weak typing
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}

	return decoder.Decode(settings)
}

var (
	grantSpecType = reflect.TypeOf(access.GrantSpec{})
	profileType   = reflect.TypeOf(access.Profile{})
)

// grantSpecDecodeHook converts raw grant values into access.GrantSpec.
func grantSpecDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != grantSpecType {
		return data, nil
	}
	return access.ParseGrantValue(data)
}

// profileDecodeHook converts raw profile maps into access.Profile.
func profileDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != profileType {
		return data, nil
	}
	return access.ParseProfileValue(data)
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "filegate")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "filegate")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
