package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"viralreporter/pkg/logger"
	"viralreporter/pkg/platform"
	"viralreporter/pkg/reporter"
	"viralreporter/pkg/session"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage saved platform sessions",
	Long: `Manage the saved login sessions the searches run with.

Sessions are stored as files under the session directory, one per platform.
Set session.encrypt in the config file to store them encrypted with a
passphrase taken from the environment.`,
}

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login <platform>",
	Short: "Log in to a platform and save the session",
	Long: `Open a browser window, wait for you to log in, and save the session
for future runs. Platforms without a login (naver_blog) need no session.`,
	Example: `  # Log in to Instagram ahead of a run
  viralreporter auth login instagram`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthLogin,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which platforms have a saved session",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout <platform>",
	Short: "Remove a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	p, err := platform.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := reporter.New(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Start(ctx); err != nil {
		return err
	}

	if err := r.Authenticate(ctx, p); err != nil {
		return err
	}
	fmt.Printf("Session for %s is ready.\n", p)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}

	for _, p := range platform.Platforms() {
		state := "no session"
		if p == platform.NaverBlog {
			state = "not needed"
		} else if store.Exists(string(p)) {
			state = "saved"
		}
		fmt.Printf("  %-12s %s\n", p, state)
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	p, err := platform.Parse(args[0])
	if err != nil {
		return err
	}

	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}

	if !store.Exists(string(p)) {
		fmt.Printf("No saved session for %s.\n", p)
		return nil
	}
	if err := store.Clear(string(p)); err != nil {
		return err
	}
	fmt.Printf("Session for %s removed.\n", p)
	return nil
}

func sessionStore(cmd *cobra.Command) (session.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return session.NewStore(&cfg.Session)
}
