// ABOUTME: Entry point for the quotedesk CLI, HTTP API and MCP server
// ABOUTME: Loads configuration, wires logging and monitoring, then routes commands
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/charm"
	"github.com/harperreed/quotedesk/cli"
	"github.com/harperreed/quotedesk/config"
	"github.com/harperreed/quotedesk/logging"
	"github.com/harperreed/quotedesk/monitoring"
)

const version = "0.2.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", config.Path(), "Config file path")
	envFile := flag.String("env-file", ".env", "Dotenv file to load")
	backend := flag.String("backend", "", "Storage backend override (sqlite, badger, redis, charm)")
	dbPath := flag.String("db-path", "", "SQLite database path override")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("quotedesk version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.LoadFrom(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)
	monitoring.Init()
	if err := monitoring.InitSentry(cfg.SentryDSN, "production", version); err != nil {
		logger.Warn("sentry disabled", "error", err)
	}
	defer monitoring.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, args[0], args[1:]); err != nil {
		logger.Error("command failed", "command", args[0], "error", err)
		monitoring.Flush()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, command string, args []string) error {
	sub, subArgs := "", []string(nil)
	if len(args) > 0 {
		sub, subArgs = args[0], args[1:]
	}

	// Commands that never touch the lead store.
	switch command {
	case "help":
		printUsage()
		return nil
	case "config":
		switch sub {
		case "", "show":
			return cli.ConfigShowCommand(cfg, subArgs)
		case "init":
			return cli.ConfigInitCommand(cfg, subArgs)
		}
		return unknown("config", sub)
	case "charm":
		switch sub {
		case "link":
			return charm.LinkCommand(subArgs)
		case "status":
			return charm.StatusCommand(subArgs)
		case "now":
			return charm.NowCommand(subArgs)
		case "wipe":
			return charm.WipeCommand(subArgs)
		case "auto":
			return charm.AutoCommand(subArgs)
		}
		return unknown("charm", sub)
	case "sync":
		if sub == "login" {
			return cli.SyncLoginCommand(ctx, subArgs)
		}
	}

	app, err := cli.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	svc := app.Service

	switch command {
	case "lead":
		switch sub {
		case "add":
			return cli.AddLeadCommand(ctx, svc, subArgs)
		case "list":
			return cli.ListLeadsCommand(ctx, svc, subArgs)
		case "update":
			return cli.UpdateLeadCommand(ctx, svc, subArgs)
		case "delete":
			return cli.DeleteLeadCommand(ctx, svc, subArgs)
		case "status":
			return cli.StatusLeadCommand(ctx, svc, subArgs)
		case "contacted":
			return cli.ContactedLeadCommand(ctx, svc, subArgs)
		case "dedupe":
			return cli.DedupeLeadsCommand(ctx, svc, subArgs)
		case "clear":
			return cli.ClearLeadsCommand(ctx, svc, subArgs)
		}
		return unknown("lead", sub)

	case "stats":
		return cli.StatsCommand(ctx, svc, args)

	case "submit":
		return cli.SubmitCommand(ctx, svc, args)

	case "import":
		switch sub {
		case "pending":
			return cli.ImportPendingCommand(ctx, svc, subArgs)
		case "csv", "xlsx":
			return cli.ImportFileCommand(ctx, svc, sub, subArgs)
		}
		return unknown("import", sub)

	case "export":
		switch sub {
		case "csv", "xlsx":
			return cli.ExportCommand(ctx, svc, sub, subArgs)
		}
		return unknown("export", sub)

	case "sync":
		switch sub {
		case "pull":
			return cli.SyncPullCommand(ctx, svc, subArgs)
		case "push":
			return cli.SyncPushCommand(ctx, svc, subArgs)
		case "push-all":
			return cli.SyncPushAllCommand(ctx, svc, subArgs)
		case "setup":
			return cli.SyncSetupCommand(ctx, svc, subArgs)
		case "test":
			return cli.SyncTestCommand(ctx, svc, subArgs)
		case "status":
			return cli.SyncStatusCommand(app.SQL, subArgs)
		}
		return unknown("sync", sub)

	case "serve":
		return cli.ServeCommand(ctx, app, args)

	case "mcp":
		return cli.MCPCommand(ctx, app, version)
	}

	return unknown("", command)
}

func unknown(group, sub string) error {
	printUsage()
	if group == "" {
		return fmt.Errorf("unknown command: %s", sub)
	}
	if sub == "" {
		return fmt.Errorf("%s requires a subcommand", group)
	}
	return fmt.Errorf("unknown %s command: %s", group, sub)
}

func printUsage() {
	fmt.Printf(`quotedesk v%s - Home services quote CRM

USAGE:
  quotedesk [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.local/share/quotedesk/config.json)
  --env-file <path>      Dotenv file loaded before QUOTEDESK_* variables (default: .env)
  --backend <name>       Storage backend: sqlite, badger, redis or charm
  --db-path <path>       SQLite database path

LEAD COMMANDS:
  quotedesk lead add          Add a lead
    --firstName, --lastName, --phone, --email, --address, --city, --state, --zip
    --serviceType, --priority, --status, --notes, --budget, --referralSource, ...
  quotedesk lead list         List leads, highest priority first
    --query <text>              Search name, phone, email, notes and service
    --status <status>           Filter by status
    --limit <n>                 Max results (default: 50)
  quotedesk lead update [flags] <id>   Update a lead (flags before the ID)
  quotedesk lead delete <id>           Delete a lead locally
  quotedesk lead status <id> <status>  Change status
  quotedesk lead contacted <id>        Toggle the contacted flag
  quotedesk lead dedupe --confirm      Merge leads sharing a phone number
  quotedesk lead clear --confirm       Delete every local lead
  quotedesk stats                      Pipeline counters

INTAKE:
  quotedesk submit [flags]    Record a public quote request
  quotedesk import pending    Import queued quote requests
  quotedesk import csv <file>
  quotedesk import xlsx <file>
  quotedesk export csv [file] (stdout without a file)
  quotedesk export xlsx <file>

REMOTE SPREADSHEET:
  quotedesk sync login        Authorize the Google Sheets remote
  quotedesk sync pull         Merge remote rows into local leads
  quotedesk sync push <id>    Push one lead
  quotedesk sync push-all     Push every lead
  quotedesk sync setup        Write the header row
  quotedesk sync test         Check the remote answers
  quotedesk sync status       Sync history (sqlite backend)

CHARM:
  quotedesk charm link|status|now|wipe|auto

SERVERS:
  quotedesk serve [--addr :8080]   JSON API with /metrics and /health
  quotedesk mcp                    MCP server on stdio

CONFIG:
  quotedesk config show
  quotedesk config init [--force]

ENVIRONMENT:
  QUOTEDESK_BACKEND, QUOTEDESK_DB_PATH, QUOTEDESK_BADGER_DIR, QUOTEDESK_REDIS_URL,
  QUOTEDESK_REMOTE (script|sheets), QUOTEDESK_SCRIPT_URL, QUOTEDESK_SPREADSHEET_ID,
  QUOTEDESK_SHEET_NAME, QUOTEDESK_PUSH_TIMEOUT, QUOTEDESK_PULL_TIMEOUT,
  QUOTEDESK_BULK_PUSH_DELAY, QUOTEDESK_AUTO_PUSH, QUOTEDESK_LOG_LEVEL,
  QUOTEDESK_SENTRY_DSN, QUOTEDESK_HTTP_ADDR, GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET

`, version)
}
