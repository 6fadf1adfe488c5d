// ABOUTME: Tests for the Sheets API backend against a fake values endpoint
// ABOUTME: Verifies header skipping, id-based duplicate detection and row updates
package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeSheet struct {
	mu     sync.Mutex
	rows   [][]interface{}
	writes []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "!A:A"):
		col := make([][]interface{}, len(f.rows))
		for i, row := range f.rows {
			col[i] = row[:1]
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": col})
	case r.Method == http.MethodGet && strings.HasSuffix(path, "!A:P"):
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": f.rows})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		f.rows = append(f.rows, decodeRow(r.Body))
		f.writes = append(f.writes, "append")
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut:
		f.writes = append(f.writes, path[strings.LastIndex(path, "!")+1:])
		row := decodeRow(r.Body)
		if strings.HasSuffix(path, "A2:P2") {
			f.rows[1] = row
		}
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1"}`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheet) snapshot() ([][]interface{}, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]interface{}(nil), f.rows...), append([]string(nil), f.writes...)
}

func decodeRow(body io.Reader) []interface{} {
	var vr struct {
		Values [][]interface{} `json:"values"`
	}
	_ = json.NewDecoder(body).Decode(&vr)
	if len(vr.Values) == 0 {
		return nil
	}
	return vr.Values[0]
}

func newSheetsTestClient(t *testing.T, fake *fakeSheet) *SheetsClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewSheetsClient(context.Background(), "sheet-1", "", log.New(io.Discard),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestSheetsPullSkipsHeaderAndBlankRows(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{
		{"ID", "First", "Last", "Phone"},
		{"r1", "Ann", "Lee", 6155551234.0},
		{"", "", ""},
		{"r2", "Bo"},
	}}
	c := newSheetsTestClient(t, fake)

	res, err := c.Pull(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "r1", res.Rows[0].ID)
	assert.Equal(t, "6155551234", res.Rows[0].Phone)
	assert.Equal(t, "Bo", res.Rows[1].FirstName)
}

func TestSheetsPushDetectsDuplicateByID(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{
		{"ID", "First"},
		{"X1", "Ann"},
	}}
	c := newSheetsTestClient(t, fake)

	res, err := c.Push(context.Background(), models.CustomerRecord{ID: "X1", FirstName: "Ann"})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.False(t, res.Success)
	_, writes := fake.snapshot()
	assert.Empty(t, writes)

	res, err = c.Push(context.Background(), models.CustomerRecord{ID: "X2", FirstName: "Bo", Status: models.StatusQuoted})
	require.NoError(t, err)
	assert.True(t, res.Success)
	rows, _ := fake.snapshot()
	require.Len(t, rows, 3)
	assert.Equal(t, "X2", rows[2][0])
	assert.Equal(t, "Quote Provided", rows[2][10])
}

func TestSheetsUpdate(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{
		{"ID", "First"},
		{"X1", "Ann"},
	}}
	c := newSheetsTestClient(t, fake)

	res, err := c.Update(context.Background(), models.CustomerRecord{ID: "X1", FirstName: "Annie"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	rows, writes := fake.snapshot()
	assert.Equal(t, []string{"A2:P2"}, writes)
	assert.Equal(t, "Annie", rows[1][1])

	_, err = c.Update(context.Background(), models.CustomerRecord{ID: "missing", FirstName: "Ann"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSheetsSetupHeadersAndTest(t *testing.T) {
	fake := &fakeSheet{rows: [][]interface{}{{""}}}
	c := newSheetsTestClient(t, fake)

	require.NoError(t, c.SetupHeaders(context.Background()))
	_, writes := fake.snapshot()
	assert.Equal(t, []string{"A1:P1"}, writes)
	require.NoError(t, c.Test(context.Background()))
}

func TestNewSheetsClientRequiresSpreadsheet(t *testing.T) {
	_, err := NewSheetsClient(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
