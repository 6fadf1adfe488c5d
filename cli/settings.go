// ABOUTME: Configuration CLI commands
// ABOUTME: Shows the effective settings and writes a starter config file
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/quotedesk/config"
)

// ConfigShowCommand prints the effective configuration.
func ConfigShowCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config show", flag.ExitOnError)
	_ = fs.Parse(args)

	fmt.Printf("Config file:     %s\n", config.Path())
	fmt.Printf("Backend:         %s\n", cfg.Backend)
	switch cfg.Backend {
	case config.BackendSQLite:
		fmt.Printf("Database:        %s\n", cfg.DBPath)
	case config.BackendBadger:
		fmt.Printf("Badger dir:      %s\n", cfg.BadgerDir)
	case config.BackendRedis:
		fmt.Printf("Redis:           %s\n", cfg.RedisURL)
	}

	fmt.Printf("Remote:          %s", cfg.Remote)
	if !cfg.RemoteConfigured() {
		fmt.Print(" (not configured)")
	}
	fmt.Println()
	if cfg.ScriptURL != "" {
		fmt.Printf("Script URL:      %s\n", cfg.ScriptURL)
	}
	if cfg.SpreadsheetID != "" {
		fmt.Printf("Spreadsheet:     %s (%s)\n", cfg.SpreadsheetID, orDash(cfg.SheetName))
	}
	fmt.Printf("Push timeout:    %s\n", cfg.PushTimeout)
	fmt.Printf("Pull timeout:    %s\n", cfg.PullTimeout)
	fmt.Printf("Bulk push delay: %s\n", cfg.BulkPushDelay)
	fmt.Printf("Auto push:       %v\n", cfg.AutoPush)
	fmt.Printf("Log level:       %s\n", cfg.LogLevel)
	fmt.Printf("HTTP address:    %s\n", cfg.HTTPAddr)
	if cfg.SentryDSN != "" {
		fmt.Println("Sentry:          enabled")
	}
	return nil
}

// ConfigInitCommand writes cfg to the config file unless one exists.
func ConfigInitCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	_ = fs.Parse(args)

	path := config.Path()
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("✓ Config written to %s\n", path)
	return nil
}
