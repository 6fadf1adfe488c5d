// ABOUTME: Remote sync CLI commands
// ABOUTME: Handles Google login, pull, single and bulk push, sheet setup and sync status
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/db"
	"github.com/harperreed/quotedesk/remote"
	"golang.org/x/oauth2"
)

// SyncLoginCommand runs the OAuth flow for the Sheets remote.
func SyncLoginCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync login", flag.ExitOnError)
	_ = fs.Parse(args)

	config, err := remote.OAuthConfig()
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: ":8080", Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		if err := remote.SaveToken(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		fmt.Printf("\n✓ Authenticated successfully\n")
		fmt.Printf("✓ Tokens saved to %s\n\n", remote.TokenPath())
		fmt.Println("Set QUOTEDESK_REMOTE=sheets and QUOTEDESK_SPREADSHEET_ID, then run 'quotedesk sync test'.")
		return nil

	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)

	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return ctx.Err()
	}
}

// SyncPullCommand merges the remote rows into the local collection.
func SyncPullCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("sync pull", flag.ExitOnError)
	_ = fs.Parse(args)

	fmt.Println("Pulling leads from remote...")
	res, err := svc.PullRemote(ctx)
	if err != nil {
		return remoteError("pull", err)
	}

	fmt.Printf("✓ Pulled: %d added, %d updated, %d unchanged\n", res.Added, res.Updated, res.Skipped)
	if res.Rejected > 0 {
		fmt.Printf("  %d row(s) were rejected as malformed\n", res.Rejected)
	}
	return nil
}

// SyncPushCommand pushes one lead as a new remote row.
func SyncPushCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("sync push", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: sync push <id>")
	}

	res, err := svc.PushRecord(ctx, fs.Arg(0))
	if err != nil {
		return remoteError("push", err)
	}
	if res.Duplicate {
		fmt.Printf("Lead already exists remotely (ID: %s); nothing changed\n", res.CustomerID)
		return nil
	}
	fmt.Printf("✓ Pushed lead %s\n", fs.Arg(0))
	return nil
}

// SyncPushAllCommand pushes every local lead.
func SyncPushAllCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("sync push-all", flag.ExitOnError)
	_ = fs.Parse(args)

	leads := svc.List(ctx)
	if len(leads) == 0 {
		fmt.Println("No leads to push")
		return nil
	}
	fmt.Printf("Pushing %d lead(s)...\n", len(leads))

	res, err := svc.PushAll(ctx)
	if err != nil {
		return remoteError("bulk push", err)
	}

	fmt.Printf("✓ Pushed %d, %d already present, %d failed\n", res.Pushed, res.Duplicates, res.Failed)
	for id, perr := range res.Errors {
		fmt.Printf("  ✗ %s: %v\n", id, perr)
	}
	return nil
}

// SyncSetupCommand writes the header row on the remote sheet.
func SyncSetupCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("sync setup", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := svc.SetupRemote(ctx); err != nil {
		return remoteError("setup", err)
	}
	fmt.Println("✓ Remote headers written")
	return nil
}

// SyncTestCommand checks that the remote answers.
func SyncTestCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("sync test", flag.ExitOnError)
	_ = fs.Parse(args)

	start := time.Now()
	if err := svc.TestRemote(ctx); err != nil {
		return remoteError("test", err)
	}
	fmt.Printf("✓ Remote reachable (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// SyncStatusCommand shows the per-service sync state and recent log.
func SyncStatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of log entries to show")
	_ = fs.Parse(args)

	if database == nil {
		fmt.Println("Sync history is only kept with the sqlite backend")
		return nil
	}

	states, err := db.GetAllSyncStates(database)
	if err != nil {
		return fmt.Errorf("failed to get sync states: %w", err)
	}

	fmt.Println("Sync Status")
	fmt.Println("───────────")
	if len(states) == 0 {
		fmt.Println("No syncs recorded yet")
	}
	for _, state := range states {
		last := "never"
		if state.LastSyncTime != nil {
			last = formatTimeSince(*state.LastSyncTime)
		}
		fmt.Printf("%-8s %-8s last sync %s\n", state.Service, state.Status, last)
		if state.ErrorMessage != nil && *state.ErrorMessage != "" {
			fmt.Printf("         error: %s\n", *state.ErrorMessage)
		}
	}

	entries, err := db.RecentSyncLog(database, *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tSERVICE\tACTION\tOUTCOME\tRECORD\tADDED\tUPDATED\tSKIPPED")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			formatTimeSince(e.At), e.Service, e.Action, e.Outcome, orDash(e.RecordID),
			e.Added, e.Updated, e.Skipped)
	}
	return w.Flush()
}

// remoteError turns sentinel remote failures into actionable messages.
func remoteError(action string, err error) error {
	switch {
	case errors.Is(err, crm.ErrNoRemote):
		return fmt.Errorf("no remote configured: set QUOTEDESK_SCRIPT_URL, or QUOTEDESK_REMOTE=sheets with QUOTEDESK_SPREADSHEET_ID")
	case errors.Is(err, crm.ErrNotFound):
		return err
	}
	return fmt.Errorf("%s failed (%s): %w", action, remote.Classify(err), err)
}

func formatTimeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
