// ABOUTME: MCP server subcommand
// ABOUTME: Exposes lead tools, resources and prompts to MCP clients over stdio
package cli

import (
	"context"

	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer registers every lead tool, resource and prompt.
func NewMCPServer(svc *crm.Service, version string) *mcp.Server {
	leadHandlers := handlers.NewLeadHandlers(svc)
	resourceHandlers := handlers.NewResourceHandlers(svc)
	promptHandlers := handlers.NewPromptHandlers(svc)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "quotedesk",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_leads",
		Description: "Search leads by name, phone, email, notes or service, optionally filtered by status",
	}, leadHandlers.FindLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_lead",
		Description: "Add a new lead; a first name or phone number is required",
	}, leadHandlers.AddLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_lead_status",
		Description: "Move a lead to a new pipeline status",
	}, leadHandlers.UpdateLeadStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_pending",
		Description: "Import queued public quote requests into the lead list",
	}, leadHandlers.ImportPending)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_pull",
		Description: "Pull leads from the remote spreadsheet and merge them",
	}, leadHandlers.SyncPull)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dedupe_leads",
		Description: "Merge leads sharing a phone number; destructive, requires confirm=true",
	}, leadHandlers.DedupeLeads)

	server.AddResource(&mcp.Resource{
		URI:         handlers.ResourceScheme + "leads",
		Name:        "leads",
		Description: "All leads, highest priority first",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: handlers.ResourceScheme + "leads/{id}",
		Name:        "lead",
		Description: "A single lead by ID",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         handlers.ResourceScheme + "stats",
		Name:        "stats",
		Description: "Pipeline counters",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "lead-follow-up",
		Description: "Draft a follow-up message for one lead",
		Arguments: []*mcp.PromptArgument{
			{Name: "lead_id", Description: "Lead ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Summarize the pipeline and suggest who to call first",
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, app *App, version string) error {
	app.Logger.Info("starting MCP server")
	server := NewMCPServer(app.Service, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
