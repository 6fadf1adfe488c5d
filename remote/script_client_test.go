// ABOUTME: Tests for the script endpoint client against an httptest mock
// ABOUTME: Covers callback correlation, duplicates, timeouts and registry cleanup
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockScript answers like the spreadsheet script. With jsonp false it
// ignores the callback and returns a plain JSON body.
func mockScript(t *testing.T, jsonp bool, handle func(q map[string]string) interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		body, _ := json.Marshal(handle(q))

		if jsonp && q["callback"] != "" {
			w.Header().Set("Content-Type", "application/javascript")
			_, _ = fmt.Fprintf(w, "%s(%s);", q["callback"], body)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, url string, opts ...ScriptOption) *ScriptClient {
	t.Helper()
	opts = append([]ScriptOption{WithLogger(log.New(io.Discard))}, opts...)
	c, err := NewScriptClient(url, opts...)
	require.NoError(t, err)
	return c
}

func TestPushSuccessSendsFieldsAndToken(t *testing.T) {
	var got map[string]string
	srv := mockScript(t, true, func(q map[string]string) interface{} {
		got = q
		return map[string]string{"status": "success", "customerId": q["id"]}
	})
	c := newTestClient(t, srv.URL)

	res, err := c.Push(context.Background(), models.CustomerRecord{
		ID: "X1", FirstName: "Ann", Phone: "6155551234", Status: models.StatusQuoted, Priority: models.PriorityHigh,
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Duplicate)
	assert.Equal(t, "X1", res.CustomerID)
	assert.Equal(t, ActionAddCustomer, got["action"])
	assert.Regexp(t, `^cb_[0-9A-Z]{26}$`, got["callback"])
	assert.Equal(t, "Ann", got["firstName"])
	assert.Equal(t, "Quote Provided", got["status"])
	assert.Equal(t, "high", got["priority"])
	assert.Zero(t, c.Registry().Len())
}

func TestPushDuplicate(t *testing.T) {
	srv := mockScript(t, true, func(q map[string]string) interface{} {
		return map[string]string{"status": "duplicate", "message": "Customer already exists", "customerId": q["id"]}
	})
	c := newTestClient(t, srv.URL)

	res, err := c.Push(context.Background(), models.CustomerRecord{ID: "X1", FirstName: "Ann"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.Duplicate)
	assert.Equal(t, "Customer already exists", res.Message)
}

func TestPushRemoteError(t *testing.T) {
	srv := mockScript(t, true, func(map[string]string) interface{} {
		return map[string]string{"status": "error", "message": "sheet locked"}
	})
	c := newTestClient(t, srv.URL)

	_, err := c.Push(context.Background(), models.CustomerRecord{ID: "X1", FirstName: "Ann"})
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, CategoryRemote, Classify(err))
}

func TestUpdateUnknownID(t *testing.T) {
	srv := mockScript(t, true, func(q map[string]string) interface{} {
		return map[string]string{"status": "error", "message": "Customer not found", "customerId": q["id"]}
	})
	c := newTestClient(t, srv.URL)

	_, err := c.Update(context.Background(), models.CustomerRecord{ID: "nope", FirstName: "Ann"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPullPlainJSON(t *testing.T) {
	srv := mockScript(t, false, func(q map[string]string) interface{} {
		assert.Equal(t, ActionGetData, q["action"])
		return map[string]interface{}{
			"status":    "success",
			"totalRows": 3,
			"data": []map[string]interface{}{
				{"id": "r1", "firstName": "Ann", "phone": 6155551234.0, "status": "Quote Provided", "priority": 4.0},
				{"id": "r2", "firstName": "Bo", "phone": "615-555-0000", "zip": 37203.0},
			},
		}
	})
	c := newTestClient(t, srv.URL)

	res, err := c.Pull(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, "6155551234", res.Rows[0].Phone)
	assert.Equal(t, "37203", res.Rows[1].Zip)

	recs := res.Records(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, recs, 2)
	assert.Equal(t, models.StatusQuoted, recs[0].Status)
	assert.Equal(t, models.PriorityHigh, recs[0].Priority)
	assert.Zero(t, c.Registry().Len())
}

func TestPullEmptySheet(t *testing.T) {
	srv := mockScript(t, true, func(map[string]string) interface{} {
		return map[string]interface{}{"status": "success", "data": []interface{}{}, "message": "Google Sheets is empty"}
	})
	c := newTestClient(t, srv.URL)

	res, err := c.Pull(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, "Google Sheets is empty", res.Message)
}

func TestCallTimesOutAndUnregisters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL, WithTimeouts(50*time.Millisecond, 50*time.Millisecond))

	_, err := c.Push(context.Background(), models.CustomerRecord{ID: "X1", FirstName: "Ann"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, CategoryTimeout, Classify(err))
	assert.Zero(t, c.Registry().Len())

	_, err = c.Pull(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, c.Registry().Len())
}

func TestCallTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL)

	err := c.Test(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, CategoryNetwork, Classify(err))
	assert.Zero(t, c.Registry().Len())
}

func TestCallMismatchedCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `cb_SOMEONEELSE({"status":"success"});`)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL)

	err := c.Test(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Zero(t, c.Registry().Len())
}

func TestCallMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<html>Sign in</html>`)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL)

	_, err := c.Pull(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, CategoryMalformed, Classify(err))
}

func TestConcurrentPushesAreIndependent(t *testing.T) {
	srv := mockScript(t, true, func(q map[string]string) interface{} {
		return map[string]string{"status": "success", "customerId": q["id"]}
	})
	c := newTestClient(t, srv.URL)

	var wg sync.WaitGroup
	results := make([]PushResult, 10)
	errs := make([]error, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Push(context.Background(), models.CustomerRecord{ID: fmt.Sprintf("id-%d", i), FirstName: "Ann"})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("id-%d", i), results[i].CustomerID)
	}
	assert.Zero(t, c.Registry().Len())
}

func TestSetupHeadersAndTest(t *testing.T) {
	var actions []string
	var mu sync.Mutex
	srv := mockScript(t, true, func(q map[string]string) interface{} {
		mu.Lock()
		actions = append(actions, q["action"])
		mu.Unlock()
		return map[string]string{"status": "success"}
	})
	c := newTestClient(t, srv.URL)

	require.NoError(t, c.SetupHeaders(context.Background()))
	require.NoError(t, c.Test(context.Background()))
	assert.Equal(t, []string{ActionSetupHeaders, ActionTest}, actions)
}

func TestNewScriptClientRequiresEndpoint(t *testing.T) {
	_, err := NewScriptClient("")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewScriptClient("not a url")
	assert.Error(t, err)
}
