// ABOUTME: Tests for the lead MCP tools, resources and prompts
// ABOUTME: Runs the handlers directly against a badger-backed lead service
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/crm"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *crm.Service {
	t.Helper()
	kv, err := store.OpenBadger(t.TempDir())
	require.NoError(t, err)
	logger := log.New(io.Discard)
	st := store.NewKVStore(kv, logger)
	t.Cleanup(func() { _ = st.Close() })
	return crm.New(st, crm.Options{Logger: logger})
}

func TestAddAndFindLeads(t *testing.T) {
	svc := setupService(t)
	h := NewLeadHandlers(svc)
	ctx := context.Background()

	_, added, err := h.AddLead(ctx, nil, AddLeadInput{
		FirstName: "Maria",
		LastName:  "Lopez",
		Phone:     "(555) 222-3333",
		Priority:  "high",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Maria Lopez", added.Name)
	assert.Equal(t, "5552223333", added.Phone)
	assert.Equal(t, "high", added.Priority)

	_, _, err = h.AddLead(ctx, nil, AddLeadInput{FirstName: "Tom", Priority: "low"})
	require.NoError(t, err)

	_, found, err := h.FindLeads(ctx, nil, FindLeadsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, found.Total)
	require.Len(t, found.Leads, 2)
	assert.Equal(t, "Maria Lopez", found.Leads[0].Name)

	_, found, err = h.FindLeads(ctx, nil, FindLeadsInput{Query: "tom"})
	require.NoError(t, err)
	require.Len(t, found.Leads, 1)
	assert.Equal(t, "Tom", found.Leads[0].Name)

	_, found, err = h.FindLeads(ctx, nil, FindLeadsInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, found.Total)
	assert.Len(t, found.Leads, 1)
}

func TestAddLeadRequiresNameOrPhone(t *testing.T) {
	h := NewLeadHandlers(setupService(t))

	_, _, err := h.AddLead(context.Background(), nil, AddLeadInput{Email: "a@example.com"})
	assert.Error(t, err)
}

func TestUpdateLeadStatus(t *testing.T) {
	svc := setupService(t)
	h := NewLeadHandlers(svc)
	ctx := context.Background()

	_, added, err := h.AddLead(ctx, nil, AddLeadInput{FirstName: "Sam", Phone: "5550001111"})
	require.NoError(t, err)

	_, updated, err := h.UpdateLeadStatus(ctx, nil, UpdateLeadStatusInput{ID: added.ID, Status: "Work Scheduled"})
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusScheduled), updated.Status)

	_, _, err = h.UpdateLeadStatus(ctx, nil, UpdateLeadStatusInput{ID: "missing", Status: "completed"})
	assert.ErrorIs(t, err, crm.ErrNotFound)

	_, _, err = h.UpdateLeadStatus(ctx, nil, UpdateLeadStatusInput{ID: added.ID})
	assert.Error(t, err)
}

func TestImportPendingTool(t *testing.T) {
	svc := setupService(t)
	h := NewLeadHandlers(svc)
	ctx := context.Background()

	_, err := svc.SubmitQuote(ctx, models.Submission{FirstName: "Lee", Phone: "555-444-5555"})
	require.NoError(t, err)

	_, out, err := h.ImportPending(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)

	count, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSyncPullWithoutRemote(t *testing.T) {
	h := NewLeadHandlers(setupService(t))

	_, _, err := h.SyncPull(context.Background(), nil, EmptyInput{})
	assert.ErrorIs(t, err, crm.ErrNoRemote)
}

func TestDedupeLeadsTool(t *testing.T) {
	svc := setupService(t)
	h := NewLeadHandlers(svc)
	ctx := context.Background()

	for _, name := range []string{"Kim", "Kimberly"} {
		_, _, err := h.AddLead(ctx, nil, AddLeadInput{FirstName: name, Phone: "555-777-8888"})
		require.NoError(t, err)
	}

	_, _, err := h.DedupeLeads(ctx, nil, DedupeLeadsInput{})
	assert.Error(t, err)
	assert.Len(t, svc.List(ctx), 2)

	_, out, err := h.DedupeLeads(ctx, nil, DedupeLeadsInput{Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Removed)
	assert.Equal(t, 1, out.Groups)
	assert.Equal(t, 1, out.Kept)
}

func TestReadResources(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	rec, err := svc.AddForm(ctx, map[string]string{"firstName": "Ira", "phone": "5553332222"})
	require.NoError(t, err)

	h := NewResourceHandlers(svc)
	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read("quotedesk://leads")
	require.NoError(t, err)
	var leads []models.CustomerRecord
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, rec.ID, leads[0].ID)

	res, err = read("quotedesk://leads/" + rec.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"firstName": "Ira"`)

	res, err = read("quotedesk://stats")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"total": 1`)

	_, err = read("crm://contacts")
	assert.Error(t, err)
	_, err = read("quotedesk://deals")
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	rec, err := svc.AddForm(ctx, map[string]string{"firstName": "Ola", "phone": "5556667777", "notes": "Wants a storm door"})
	require.NoError(t, err)

	h := NewPromptHandlers(svc)
	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}

	res, err := get("lead-follow-up", map[string]string{"lead_id": rec.ID})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Ola")
	assert.Contains(t, text, "Wants a storm door")

	_, err = get("lead-follow-up", nil)
	assert.Error(t, err)

	res, err = get("pipeline-review", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "Total leads: 1")

	_, err = get("unknown", nil)
	assert.Error(t, err)
}
