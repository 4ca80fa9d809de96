package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/snapcurator/pkg/config"
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

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestBackendConfig_InvalidURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Backend.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid base url should fail")
	}
}

func TestBackendConfig_TimeoutTooShort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Backend.Timeout = 10 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-second timeout should fail")
	}
}

func TestMonitorConfig_IntervalRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Monitor.Interval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero interval should fail")
	}
}

func TestOverride(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Override("https://admin.example.com", "")
	if cfg.Backend.BaseURL != "https://admin.example.com" {
		t.Errorf("base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.SessionCookie != "" {
		t.Errorf("session = %q, want untouched", cfg.Backend.SessionCookie)
	}
	cfg.Override("", "abc")
	if cfg.Backend.BaseURL != "https://admin.example.com" || cfg.Backend.SessionCookie != "abc" {
		t.Errorf("backend = %+v", cfg.Backend)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("TEST_SESSION", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `app:
  log_level: debug
  http:
    port: 9090
backend:
  base_url: https://admin.example.com
  session_cookie: ${TEST_SESSION}
  cookie_name: session
  timeout: 5s
journal:
  path: ""
monitor:
  interval: 15s
  throttle: 1m
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.SessionCookie != "s3cret" || cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Monitor.Interval != 15*time.Second || cfg.Monitor.Throttle != time.Minute {
		t.Errorf("monitor = %+v", cfg.Monitor)
	}
	if cfg.Journal.Path != "" || cfg.App.HTTP.Port != 9090 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Auth.Mode != AuthModeDisabled {
		t.Errorf("auth mode = %q", cfg.Auth.Mode)
	}
}
