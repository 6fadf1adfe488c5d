// ABOUTME: Lead MCP tool handlers
// ABOUTME: Implements find_leads, add_lead, update_lead_status, import_pending, sync_pull and dedupe_leads
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/normalize"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type LeadHandlers struct {
	svc *crm.Service
}

func NewLeadHandlers(svc *crm.Service) *LeadHandlers {
	return &LeadHandlers{svc: svc}
}

type LeadOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	ServiceType string `json:"service_type,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Contacted   bool   `json:"contacted"`
	Notes       string `json:"notes,omitempty"`
	Source      string `json:"source,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type FindLeadsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search name, phone, email, notes and service"`
	Status string `json:"status,omitempty" jsonschema:"Filter by status (initial, quoted, scheduled, in-progress, completed, follow-up)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type FindLeadsOutput struct {
	Leads []LeadOutput `json:"leads"`
	Total int          `json:"total"`
}

func (h *LeadHandlers) FindLeads(ctx context.Context, _ *mcp.CallToolRequest, input FindLeadsInput) (*mcp.CallToolResult, FindLeadsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := crm.Filter{Query: input.Query}
	if input.Status != "" {
		filter.Status = normalize.Status(input.Status)
	}

	leads := h.svc.Filtered(ctx, filter)
	out := FindLeadsOutput{Leads: []LeadOutput{}, Total: len(leads)}
	for i := range leads {
		if i == limit {
			break
		}
		out.Leads = append(out.Leads, leadToOutput(leads[i]))
	}
	return nil, out, nil
}

type AddLeadInput struct {
	FirstName   string `json:"first_name,omitempty" jsonschema:"First name (first name or phone is required)"`
	LastName    string `json:"last_name,omitempty" jsonschema:"Last name"`
	Phone       string `json:"phone,omitempty" jsonschema:"Phone number in any format"`
	Email       string `json:"email,omitempty" jsonschema:"Email address"`
	Address     string `json:"address,omitempty" jsonschema:"Street address; city, state and zip are parsed from a full address"`
	ServiceType string `json:"service_type,omitempty" jsonschema:"Requested service code or label"`
	Priority    string `json:"priority,omitempty" jsonschema:"low, medium, high or emergency"`
	Status      string `json:"status,omitempty" jsonschema:"Pipeline status (default initial)"`
	Notes       string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func (h *LeadHandlers) AddLead(ctx context.Context, _ *mcp.CallToolRequest, input AddLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	rec, err := h.svc.AddForm(ctx, map[string]string{
		"firstName":   input.FirstName,
		"lastName":    input.LastName,
		"phone":       input.Phone,
		"email":       input.Email,
		"address":     input.Address,
		"serviceType": input.ServiceType,
		"priority":    input.Priority,
		"status":      input.Status,
		"notes":       input.Notes,
	})
	if err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to add lead: %w", err)
	}
	return nil, leadToOutput(rec), nil
}

type UpdateLeadStatusInput struct {
	ID     string `json:"id" jsonschema:"Lead ID (required)"`
	Status string `json:"status" jsonschema:"New status code or label (required)"`
}

func (h *LeadHandlers) UpdateLeadStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateLeadStatusInput) (*mcp.CallToolResult, LeadOutput, error) {
	if input.ID == "" {
		return nil, LeadOutput{}, fmt.Errorf("id is required")
	}
	if input.Status == "" {
		return nil, LeadOutput{}, fmt.Errorf("status is required")
	}

	rec, err := h.svc.SetStatus(ctx, input.ID, input.Status)
	if err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to update status: %w", err)
	}
	return nil, leadToOutput(rec), nil
}

type EmptyInput struct{}

type MergeOutput struct {
	Added    int `json:"added"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Rejected int `json:"rejected"`
}

func (h *LeadHandlers) ImportPending(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, MergeOutput, error) {
	res, err := h.svc.ImportPending(ctx)
	if err != nil {
		return nil, MergeOutput{}, fmt.Errorf("failed to import pending requests: %w", err)
	}
	return nil, MergeOutput{Added: res.Added, Updated: res.Updated, Skipped: res.Skipped, Rejected: res.Rejected}, nil
}

func (h *LeadHandlers) SyncPull(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, MergeOutput, error) {
	res, err := h.svc.PullRemote(ctx)
	if err != nil {
		return nil, MergeOutput{}, fmt.Errorf("failed to pull remote leads: %w", err)
	}
	return nil, MergeOutput{Added: res.Added, Updated: res.Updated, Skipped: res.Skipped, Rejected: res.Rejected}, nil
}

type DedupeLeadsInput struct {
	Confirm bool `json:"confirm" jsonschema:"Must be true; merging duplicates cannot be undone"`
}

type DedupeLeadsOutput struct {
	Removed int `json:"removed"`
	Groups  int `json:"groups"`
	Kept    int `json:"kept"`
}

func (h *LeadHandlers) DedupeLeads(ctx context.Context, _ *mcp.CallToolRequest, input DedupeLeadsInput) (*mcp.CallToolResult, DedupeLeadsOutput, error) {
	if !input.Confirm {
		return nil, DedupeLeadsOutput{}, fmt.Errorf("confirm must be true to remove duplicates")
	}

	res, err := h.svc.Dedupe(ctx)
	if err != nil {
		return nil, DedupeLeadsOutput{}, fmt.Errorf("failed to dedupe leads: %w", err)
	}
	return nil, DedupeLeadsOutput{Removed: res.Removed, Groups: res.Groups, Kept: len(res.Kept)}, nil
}

func leadToOutput(rec models.CustomerRecord) LeadOutput {
	return LeadOutput{
		ID:          rec.ID,
		Name:        rec.FullName(),
		Phone:       rec.Phone,
		Email:       rec.Email,
		Address:     rec.Address,
		ServiceType: string(rec.ServiceType),
		Priority:    string(rec.Priority),
		Status:      string(rec.Status),
		Contacted:   rec.Contacted,
		Notes:       rec.Notes,
		Source:      rec.Source,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
