package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "github.com/nbtodo/nbtodo/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestLogLevel_UnmarshalYAML(t *testing.T) {
	var cfg ApplicationConfig
	if err := yaml.Unmarshal([]byte("log_level: warn\nhttp:\n  port: 9090\n"), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel.Level() != slog.LevelWarn {
		t.Errorf("level = %v, want %v", cfg.LogLevel.Level(), slog.LevelWarn)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
}

func TestLogLevel_RejectsUnknownName(t *testing.T) {
	var cfg ApplicationConfig
	err := yaml.Unmarshal([]byte("log_level: loud\n"), &cfg)
	if err == nil {
		t.Fatal("unknown level name should fail to decode")
	}
}

func TestNotebooksConfig_CacheTTL(t *testing.T) {
	cfg := NotebooksConfig{Path: "./notebooks", CacheTTLSeconds: 2.5}
	if got, want := cfg.CacheTTL(), 2500*time.Millisecond; got != want {
		t.Errorf("CacheTTL() = %v, want %v", got, want)
	}

	cfg.CacheTTLSeconds = 0
	if got := cfg.CacheTTL(); got != 0 {
		t.Errorf("CacheTTL() = %v, want 0", got)
	}
}

func TestNotebooksConfig_Validate(t *testing.T) {
	cfg := NotebooksConfig{Path: "./notebooks", CacheTTLSeconds: 5}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}

	cfg = NotebooksConfig{CacheTTLSeconds: 5}
	if err := cfg.Validate(); err == nil {
		t.Error("missing path should fail")
	}

	cfg = NotebooksConfig{Path: "./notebooks", CacheTTLSeconds: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("negative ttl should fail")
	}
}

func TestStorageConfig_EmptyBackendDefaultsFile(t *testing.T) {
	cfg := StorageConfig{Path: "./todos.json"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty backend should default to file: %v", err)
	}
	if cfg.Backend != StorageBackendFile {
		t.Errorf("backend = %q, want %q", cfg.Backend, StorageBackendFile)
	}
}

func TestStorageConfig_InvalidBackend(t *testing.T) {
	cfg := StorageConfig{Backend: "postgres", Path: "./todos.json"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown backend should fail validation")
	}
}

func TestStorageConfig_RequiresPath(t *testing.T) {
	cfg := StorageConfig{Backend: StorageBackendSQLite}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing path should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	t.Setenv("NBTODO_TOKEN", "s3cret")

	raw := `
app:
  log_level: debug
  http:
    port: 9191
notebooks:
  path: /tmp/notebooks
  cache_ttl_seconds: 2.5
  watch: false
storage:
  backend: sqlite
  path: /tmp/todos.db
auth:
  mode: token
  token: ${NBTODO_TOKEN}
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.App.LogLevel.Level() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.App.LogLevel.Level())
	}
	if cfg.App.HTTP.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.App.HTTP.Port)
	}
	if cfg.Notebooks.Path != "/tmp/notebooks" {
		t.Errorf("notebooks path = %q", cfg.Notebooks.Path)
	}
	if got, want := cfg.Notebooks.CacheTTL(), 2500*time.Millisecond; got != want {
		t.Errorf("cache ttl = %v, want %v", got, want)
	}
	if cfg.Notebooks.Watch {
		t.Error("watch = true, want explicit false to override the default")
	}
	if cfg.Storage.Backend != StorageBackendSQLite {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, StorageBackendSQLite)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want env-expanded value", cfg.Auth.Token)
	}
}

func TestLoadConfig_InvalidPortRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  http:\n    port: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err == nil {
		t.Fatal("port 0 should fail validation during load")
	}
}

func TestLoadIfExists_MissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(filepath.Join(t.TempDir(), "absent.yaml"), cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.App.HTTP.Port)
	}
	if cfg.Storage.Backend != StorageBackendFile {
		t.Errorf("backend = %q, want default %q", cfg.Storage.Backend, StorageBackendFile)
	}
}
