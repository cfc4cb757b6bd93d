package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage backends.
const (
	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Notebooks NotebooksConfig   `yaml:"notebooks"`
	Storage   StorageConfig     `yaml:"storage"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notebooks.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// LogLevel wraps slog.Level so YAML configs can use the usual level names
// ("debug", "info", "warn", "error"); yaml.v3 ignores encoding.TextUnmarshaler.
type LogLevel slog.Level

// UnmarshalYAML decodes a level name via slog's own parser.
func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(raw)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	*l = LogLevel(lv)
	return nil
}

// Level implements slog.Leveler.
func (l LogLevel) Level() slog.Level { return slog.Level(l) }

// String returns the canonical level name.
func (l LogLevel) String() string { return slog.Level(l).String() }

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel LogLevel   `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotebooksConfig holds the notebook scan tree settings.
type NotebooksConfig struct {
	Path            string  `yaml:"path"`
	CacheTTLSeconds float64 `yaml:"cache_ttl_seconds"`
	Watch           bool    `yaml:"watch"`
}

// CacheTTL returns the todo cache TTL as a duration. Non-positive values are
// coerced to a default by the cache itself.
func (c *NotebooksConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds * float64(time.Second))
}

// Validate validates the notebooks configuration.
func (c *NotebooksConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.CacheTTLSeconds, validation.Min(0.0)),
	)
}

// StorageConfig selects and locates the manual todo store.
//
// Backend controls where the collection is persisted:
//   - "file" (default): a single JSON document at Path.
//   - "sqlite": a SQLite database at Path.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	// Normalise empty backend to "file" so minimal configs keep working.
	if c.Backend == "" {
		c.Backend = StorageBackendFile
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(StorageBackendFile, StorageBackendSQLite)),
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: LogLevel(slog.LevelInfo),
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notebooks: NotebooksConfig{
			Path:            "./notebooks",
			CacheTTLSeconds: 5,
			Watch:           true,
		},
		Storage: StorageConfig{
			Backend: StorageBackendFile,
			Path:    "./data/todo-items.json",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
