// ABOUTME: Remote spreadsheet contract shared by the script and Sheets API backends
// ABOUTME: Defines the Remote interface, push/pull results and the response envelope
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/monitoring"
)

// Remote actions understood by the spreadsheet endpoint.
const (
	ActionGetData        = "getData"
	ActionAddCustomer    = "addCustomer"
	ActionUpdateCustomer = "updateCustomer"
	ActionSetupHeaders   = "setupHeaders"
	ActionTest           = "test"
)

// Response statuses.
const (
	StatusSuccess   = "success"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

// Default call deadlines.
const (
	DefaultPushTimeout = 10 * time.Second
	DefaultPullTimeout = 30 * time.Second
)

// Remote is the mirror of the lead collection kept in the shared spreadsheet.
// Deletion is not part of the contract.
type Remote interface {
	Push(ctx context.Context, rec models.CustomerRecord) (PushResult, error)
	Update(ctx context.Context, rec models.CustomerRecord) (PushResult, error)
	Pull(ctx context.Context) (PullResult, error)
	SetupHeaders(ctx context.Context) error
	Test(ctx context.Context) error
}

// PushResult reports a single-record write. Duplicate means the remote
// already had a row with the id and wrote nothing.
type PushResult struct {
	Success    bool
	Duplicate  bool
	CustomerID string
	Message    string
}

// PullResult is the remote collection as rows.
type PullResult struct {
	Rows      []convert.RemoteRow
	TotalRows int
	Message   string
	Timestamp string
}

// Records converts every pulled row into a canonical record.
func (p PullResult) Records(now time.Time) []models.CustomerRecord {
	out := make([]models.CustomerRecord, 0, len(p.Rows))
	for _, row := range p.Rows {
		out = append(out, convert.FromRemoteRow(row, now))
	}
	return out
}

// envelope is the JSON document every action answers with.
type envelope struct {
	Status             string          `json:"status"`
	Message            string          `json:"message"`
	Error              string          `json:"error"`
	CustomerID         string          `json:"customerId"`
	Timestamp          string          `json:"timestamp"`
	TotalRows          int             `json:"totalRows"`
	ProcessedCustomers int             `json:"processedCustomers"`
	Data               json.RawMessage `json:"data"`
}

func decodeEnvelope(payload []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Status == "" {
		return env, fmt.Errorf("%w: missing status", ErrMalformedResponse)
	}
	return env, nil
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// pushResult interprets an addCustomer/updateCustomer envelope.
func (e envelope) pushResult(action string) (PushResult, error) {
	res := PushResult{CustomerID: e.CustomerID, Message: e.message()}
	switch e.Status {
	case StatusSuccess:
		res.Success = true
		return res, nil
	case StatusDuplicate:
		res.Duplicate = true
		return res, nil
	case StatusError:
		if action == ActionUpdateCustomer && reportsMissingRow(res.Message) {
			return res, fmt.Errorf("%w: %s", ErrNotFound, res.Message)
		}
		return res, fmt.Errorf("%w: %s", ErrRemote, res.Message)
	default:
		return res, fmt.Errorf("%w: unknown status %q", ErrMalformedResponse, e.Status)
	}
}

// reportsMissingRow matches the script's answer for an id it has no row for.
func reportsMissingRow(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no customer")
}

// pullResult interprets a getData envelope. A missing data array is an
// empty sheet.
func (e envelope) pullResult() (PullResult, error) {
	if e.Status != StatusSuccess {
		return PullResult{}, fmt.Errorf("%w: %s", ErrRemote, e.message())
	}
	res := PullResult{TotalRows: e.TotalRows, Message: e.message(), Timestamp: e.Timestamp}
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return res, nil
	}
	if err := json.Unmarshal(e.Data, &res.Rows); err != nil {
		return PullResult{}, fmt.Errorf("%w: bad data rows: %v", ErrMalformedResponse, err)
	}
	return res, nil
}

// observe records one call in the remote metrics. Failed calls are labeled
// with their error class, successful ones with the response status.
func observe(action string, start time.Time, status string, err error) {
	monitoring.RemoteLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
	outcome := status
	if err != nil {
		outcome = string(Classify(err))
	}
	monitoring.RemoteRequests.WithLabelValues(action, outcome).Inc()
}
