// ABOUTME: Import and export CLI commands
// ABOUTME: Moves leads between the store and the pending queue, CSV and XLSX files
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/quotedesk/crm"
)

// ImportPendingCommand merges queued public quote requests.
func ImportPendingCommand(ctx context.Context, svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("import pending", flag.ExitOnError)
	_ = fs.Parse(args)

	count, err := svc.PendingCount(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("No pending quote requests")
		return nil
	}

	res, err := svc.ImportPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to import pending requests: %w", err)
	}

	fmt.Printf("✓ Imported %d request(s): %d added, %d updated, %d skipped\n",
		count, res.Added, res.Updated, res.Skipped)
	if res.Added+res.Updated == 0 {
		fmt.Println("  Nothing new; the pending queue was kept")
	}
	return nil
}

// ImportFileCommand imports a CSV or XLSX export. An empty format is taken
// from the file extension.
func ImportFileCommand(ctx context.Context, svc *crm.Service, format string, args []string) error {
	fs := flag.NewFlagSet("import "+format, flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: import csv|xlsx <path>")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var res crm.ImportResult
	switch fileFormat(format, path) {
	case "xlsx":
		res, err = svc.ImportXLSX(ctx, f)
	default:
		res, err = svc.ImportCSV(ctx, f)
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Imported %s: %d added, %d updated, %d skipped\n",
		filepath.Base(path), res.Merge.Added, res.Merge.Updated, res.Merge.Skipped)
	if res.Blank > 0 {
		fmt.Printf("  %d blank row(s) ignored\n", res.Blank)
	}
	for _, rowErr := range res.RowErrors {
		fmt.Printf("  ✗ %v\n", rowErr)
	}
	return nil
}

// ExportCommand writes every lead to a CSV or XLSX file. Without a path the
// CSV goes to stdout.
func ExportCommand(ctx context.Context, svc *crm.Service, format string, args []string) error {
	fs := flag.NewFlagSet("export "+format, flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		if fileFormat(format, "") == "xlsx" {
			return fmt.Errorf("xlsx export needs an output path")
		}
		return svc.ExportCSV(ctx, os.Stdout)
	}

	path := fs.Arg(0)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	var write func(context.Context, io.Writer) error = svc.ExportCSV
	if fileFormat(format, path) == "xlsx" {
		write = svc.ExportXLSX
	}
	if err := write(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("✓ Exported %d lead(s) to %s\n", len(svc.List(ctx)), path)
	return nil
}

func fileFormat(explicit, path string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}
