package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the reporter
type Config struct {
	// Browser automation settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Session persistence settings
	Session SessionConfig `yaml:"session" json:"session"`

	// Search and capture tuning
	Search SearchConfig `yaml:"search" json:"search"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Rate limiting between searches
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig holds browser driver configuration
type BrowserConfig struct {
	Headless        bool          `yaml:"headless" json:"headless"`
	ViewportWidth   int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight  int           `yaml:"viewport_height" json:"viewport_height"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout" json:"page_load_timeout"`
	LoginTimeout    time.Duration `yaml:"login_timeout" json:"login_timeout"`
	SessionProbe    time.Duration `yaml:"session_probe" json:"session_probe"`
	RemoteURL       string        `yaml:"remote_url" json:"remote_url"`
}

// SessionConfig holds session file storage configuration
type SessionConfig struct {
	Directory     string `yaml:"directory" json:"directory"`
	Encrypt       bool   `yaml:"encrypt" json:"encrypt"`
	PassphraseEnv string `yaml:"passphrase_env" json:"passphrase_env"`
}

// SearchConfig holds the capture tuning knobs. The defaults mirror the
// behavior of the platforms' result grids; they are configurable rather
// than hard-coded because none of them has a principled derivation.
type SearchConfig struct {
	InstagramTopN int           `yaml:"instagram_top_n" json:"instagram_top_n"`
	NaverTopN     int           `yaml:"naver_top_n" json:"naver_top_n"`
	RowTolerance  float64       `yaml:"row_tolerance" json:"row_tolerance"`
	Margin        float64       `yaml:"margin" json:"margin"`
	BottomPadding float64       `yaml:"bottom_padding" json:"bottom_padding"`
	ScrollPause   time.Duration `yaml:"scroll_pause" json:"scroll_pause"`
	ImageWait     time.Duration `yaml:"image_wait" json:"image_wait"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	ReportFile    string `yaml:"report_file" json:"report_file"`
}

// RateLimitConfig holds pacing configuration between searches
type RateLimitConfig struct {
	SearchesPerMinute int `yaml:"searches_per_minute" json:"searches_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:        true,
			ViewportWidth:   1280,
			ViewportHeight:  1080,
			PageLoadTimeout: 60 * time.Second,
			LoginTimeout:    300 * time.Second,
			SessionProbe:    10 * time.Second,
		},
		Session: SessionConfig{
			Directory:     defaultSessionDir(),
			Encrypt:       false,
			PassphraseEnv: "VIRALREPORTER_SESSION_KEY",
		},
		Search: SearchConfig{
			InstagramTopN: 9,
			NaverTopN:     10,
			RowTolerance:  20,
			Margin:        20,
			BottomPadding: 100,
			ScrollPause:   2 * time.Second,
			ImageWait:     5 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: "./reports",
			ReportFile:    "report.json",
		},
		RateLimit: RateLimitConfig{
			SearchesPerMinute: 10,
			BurstSize:         2,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".viralreporter/sessions"
	}
	return filepath.Join(home, ".viralreporter", "sessions")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if dir := os.Getenv("VIRALREPORTER_SESSION_DIR"); dir != "" {
		c.Session.Directory = dir
	}
	if enc := os.Getenv("VIRALREPORTER_SESSION_ENCRYPT"); enc != "" {
		c.Session.Encrypt = strings.ToLower(enc) == "true"
	}
	if outputDir := os.Getenv("VIRALREPORTER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if remote := os.Getenv("VIRALREPORTER_BROWSER_URL"); remote != "" {
		c.Browser.RemoteURL = remote
	}
	if headless := os.Getenv("VIRALREPORTER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) != "false"
	}
	if spm := os.Getenv("VIRALREPORTER_SEARCHES_PER_MINUTE"); spm != "" {
		if val, err := strconv.Atoi(spm); err == nil && val > 0 {
			c.RateLimit.SearchesPerMinute = val
		}
	}
	if timeout := os.Getenv("VIRALREPORTER_LOGIN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Browser.LoginTimeout = d
		}
	}
	if logLevel := os.Getenv("VIRALREPORTER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".viralreporter.yaml",
		".viralreporter.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "viralreporter", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".viralreporter.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, errors.New("viewport dimensions must be positive"))
	}
	if c.Browser.PageLoadTimeout <= 0 {
		errs = append(errs, errors.New("page load timeout must be positive"))
	}
	if c.Browser.LoginTimeout <= 0 {
		errs = append(errs, errors.New("login timeout must be positive"))
	}

	if c.Session.Directory == "" {
		errs = append(errs, errors.New("session directory is required"))
	}
	if c.Session.Encrypt && c.Session.PassphraseEnv == "" {
		errs = append(errs, errors.New("passphrase env var name is required when session encryption is enabled"))
	}

	if c.Search.InstagramTopN <= 0 || c.Search.NaverTopN <= 0 {
		errs = append(errs, errors.New("result counts must be positive"))
	}
	if c.Search.RowTolerance < 0 || c.Search.Margin < 0 || c.Search.BottomPadding < 0 {
		errs = append(errs, errors.New("capture margins cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.RateLimit.SearchesPerMinute <= 0 {
		errs = append(errs, errors.New("searches per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if sessionDir, ok := flags["session-dir"].(string); ok && sessionDir != "" {
		c.Session.Directory = sessionDir
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if rate, ok := flags["rate-limit"].(int); ok && rate > 0 {
		c.RateLimit.SearchesPerMinute = rate
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".viralreporter.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
