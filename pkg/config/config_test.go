package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Test default values
	if config.RateLimit.SearchesPerMinute != 10 {
		t.Errorf("Expected default searches per minute to be 10, got %d", config.RateLimit.SearchesPerMinute)
	}

	if config.Search.InstagramTopN != 9 {
		t.Errorf("Expected default Instagram result count to be 9, got %d", config.Search.InstagramTopN)
	}

	if config.Search.NaverTopN != 10 {
		t.Errorf("Expected default Naver result count to be 10, got %d", config.Search.NaverTopN)
	}

	if config.Output.BaseDirectory != "./reports" {
		t.Errorf("Expected default output directory to be ./reports, got %s", config.Output.BaseDirectory)
	}

	if !config.Browser.Headless {
		t.Error("Expected browser to default to headless")
	}

	if config.Browser.LoginTimeout != 300*time.Second {
		t.Errorf("Expected default login timeout to be 5m, got %s", config.Browser.LoginTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("VIRALREPORTER_OUTPUT_DIR", "/tmp/test-reports")
	os.Setenv("VIRALREPORTER_SESSION_DIR", "/tmp/test-sessions")
	os.Setenv("VIRALREPORTER_HEADLESS", "false")
	os.Setenv("VIRALREPORTER_SEARCHES_PER_MINUTE", "5")
	os.Setenv("VIRALREPORTER_LOGIN_TIMEOUT", "2m")
	os.Setenv("VIRALREPORTER_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("VIRALREPORTER_OUTPUT_DIR")
		os.Unsetenv("VIRALREPORTER_SESSION_DIR")
		os.Unsetenv("VIRALREPORTER_HEADLESS")
		os.Unsetenv("VIRALREPORTER_SEARCHES_PER_MINUTE")
		os.Unsetenv("VIRALREPORTER_LOGIN_TIMEOUT")
		os.Unsetenv("VIRALREPORTER_LOG_LEVEL")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if config.Output.BaseDirectory != "/tmp/test-reports" {
		t.Errorf("Expected output directory /tmp/test-reports, got %s", config.Output.BaseDirectory)
	}
	if config.Session.Directory != "/tmp/test-sessions" {
		t.Errorf("Expected session directory /tmp/test-sessions, got %s", config.Session.Directory)
	}
	if config.Browser.Headless {
		t.Error("Expected headless to be disabled")
	}
	if config.RateLimit.SearchesPerMinute != 5 {
		t.Errorf("Expected 5 searches per minute, got %d", config.RateLimit.SearchesPerMinute)
	}
	if config.Browser.LoginTimeout != 2*time.Minute {
		t.Errorf("Expected login timeout 2m, got %s", config.Browser.LoginTimeout)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
browser:
  headless: false
  viewport_width: 1920
search:
  naver_top_n: 5
output:
  base_directory: /tmp/from-file
rate_limit:
  searches_per_minute: 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Browser.Headless {
		t.Error("Expected headless false from file")
	}
	if config.Browser.ViewportWidth != 1920 {
		t.Errorf("Expected viewport width 1920, got %d", config.Browser.ViewportWidth)
	}
	if config.Search.NaverTopN != 5 {
		t.Errorf("Expected naver_top_n 5, got %d", config.Search.NaverTopN)
	}
	if config.Output.BaseDirectory != "/tmp/from-file" {
		t.Errorf("Expected output directory /tmp/from-file, got %s", config.Output.BaseDirectory)
	}

	// Values the file does not set keep their defaults
	if config.Search.InstagramTopN != 9 {
		t.Errorf("Expected instagram_top_n default 9, got %d", config.Search.InstagramTopN)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}

	// No explicit path and no file in the default locations is fine
	if err := config.LoadFromFile(""); err != nil {
		t.Errorf("Expected no error when no config file exists, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}

	config.RateLimit.SearchesPerMinute = 0
	config.Logging.Level = "loud"
	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation to fail")
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	config.MergeCommandLineFlags(map[string]interface{}{
		"output":     "/tmp/flag-reports",
		"headless":   false,
		"rate-limit": 7,
		"log-level":  "warn",
	})

	if config.Output.BaseDirectory != "/tmp/flag-reports" {
		t.Errorf("Expected output /tmp/flag-reports, got %s", config.Output.BaseDirectory)
	}
	if config.Browser.Headless {
		t.Error("Expected headless false from flags")
	}
	if config.RateLimit.SearchesPerMinute != 7 {
		t.Errorf("Expected rate limit 7, got %d", config.RateLimit.SearchesPerMinute)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", config.Logging.Level)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	config := DefaultConfig()
	config.Search.NaverTopN = 4
	config.Browser.PageLoadTimeout = 30 * time.Second

	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if reloaded.Search.NaverTopN != 4 {
		t.Errorf("Expected naver_top_n 4 after reload, got %d", reloaded.Search.NaverTopN)
	}
	if reloaded.Browser.PageLoadTimeout != 30*time.Second {
		t.Errorf("Expected page load timeout 30s after reload, got %s", reloaded.Browser.PageLoadTimeout)
	}
}
