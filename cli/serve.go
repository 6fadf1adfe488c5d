// ABOUTME: HTTP server subcommand
// ABOUTME: Serves the public intake and admin JSON API until interrupted
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/quotedesk/web"
)

// ServeCommand runs the web API. --addr overrides the configured address.
func ServeCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", app.Config.HTTPAddr, "Listen address")
	_ = fs.Parse(args)

	fmt.Printf("✓ Serving quotedesk API on %s (Ctrl-C to stop)\n", *addr)
	return web.NewServer(app.Service, app.Logger).Run(ctx, *addr)
}
