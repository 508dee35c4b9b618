package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"viralreporter/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the configuration file.

Settings are resolved in order: command line flags, environment variables
(VIRALREPORTER_*), a .env file, the config file, built-in defaults.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".viralreporter.yaml")
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("Browser:\n")
	fmt.Printf("  headless:           %v\n", cfg.Browser.Headless)
	fmt.Printf("  viewport:           %dx%d\n", cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
	fmt.Printf("  page_load_timeout:  %s\n", cfg.Browser.PageLoadTimeout)
	fmt.Printf("  login_timeout:      %s\n", cfg.Browser.LoginTimeout)
	fmt.Printf("Session:\n")
	fmt.Printf("  directory:          %s\n", cfg.Session.Directory)
	fmt.Printf("  encrypt:            %v\n", cfg.Session.Encrypt)
	fmt.Printf("Search:\n")
	fmt.Printf("  instagram_top_n:    %d\n", cfg.Search.InstagramTopN)
	fmt.Printf("  naver_top_n:        %d\n", cfg.Search.NaverTopN)
	fmt.Printf("Output:\n")
	fmt.Printf("  base_directory:     %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  report_file:        %s\n", cfg.Output.ReportFile)
	fmt.Printf("Rate limit:\n")
	fmt.Printf("  searches_per_minute: %d\n", cfg.RateLimit.SearchesPerMinute)
	return nil
}
