// ABOUTME: MCP prompt handlers for lead follow-up workflows
// ABOUTME: Builds a follow-up prompt for one lead and a pipeline review prompt
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	svc *crm.Service
}

func NewPromptHandlers(svc *crm.Service) *PromptHandlers {
	return &PromptHandlers{svc: svc}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "lead-follow-up":
		return h.leadFollowUp(ctx, request.Params.Arguments)
	case "pipeline-review":
		return h.pipelineReview(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) leadFollowUp(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["lead_id"]
	if !ok || id == "" {
		return nil, fmt.Errorf("lead_id is required")
	}

	rec, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Draft a short follow-up message for this home services lead:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", rec.FullName())
	if rec.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", rec.Phone)
	}
	if rec.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", rec.Email)
	}
	fmt.Fprintf(&b, "Service: %s\n", models.ServiceTypeLabel(rec.ServiceType))
	fmt.Fprintf(&b, "Priority: %s\n", models.PriorityLabel(rec.Priority))
	fmt.Fprintf(&b, "Status: %s\n", models.StatusLabel(rec.Status))
	if rec.Contacted {
		fmt.Fprintf(&b, "Already contacted on %s\n", rec.ContactedDate)
	}
	if rec.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", rec.Notes)
	}
	b.WriteString("\nKeep it friendly and propose a concrete next step.")

	return promptResult(fmt.Sprintf("Follow-up for %s", rec.FullName()), b.String()), nil
}

func (h *PromptHandlers) pipelineReview(ctx context.Context) (*mcp.GetPromptResult, error) {
	st, err := h.svc.Stats(ctx)
	if err != nil {
		return nil, err
	}
	leads := h.svc.Filtered(ctx, crm.Filter{})

	var b strings.Builder
	b.WriteString("Review the quote pipeline and suggest who to call first today.\n\n")
	fmt.Fprintf(&b, "Total leads: %d (active %d, completed %d, follow-up %d, pending import %d)\n\n",
		st.Total, st.Active, st.Completed, st.FollowUp, st.Pending)

	for i, rec := range leads {
		if i == 25 {
			fmt.Fprintf(&b, "...and %d more\n", len(leads)-i)
			break
		}
		contacted := ""
		if rec.Contacted {
			contacted = ", contacted"
		}
		fmt.Fprintf(&b, "- %s: %s, %s priority, %s%s\n",
			rec.FullName(),
			models.ServiceTypeLabel(rec.ServiceType),
			models.PriorityLabel(rec.Priority),
			models.StatusLabel(rec.Status),
			contacted)
	}

	return promptResult("Pipeline review", b.String()), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
