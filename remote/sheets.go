// ABOUTME: Remote backend talking to the Google Sheets API directly
// ABOUTME: Uses the operator's OAuth token instead of the script endpoint
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/models"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetName is the tab holding the lead rows.
const DefaultSheetName = "Sheet1"

// SheetsClient reads and writes the lead rows with the Sheets API. Column A
// holds the id used for duplicate detection.
type SheetsClient struct {
	srv           *sheets.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
	pushTimeout   time.Duration
	pullTimeout   time.Duration
}

// NewSheetsClientFromToken builds a client authenticated with an OAuth token.
func NewSheetsClientFromToken(ctx context.Context, token *oauth2.Token, spreadsheetID, sheet string, logger *log.Logger) (*SheetsClient, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	httpClient := NewOAuthConfig().Client(ctx, token)
	return NewSheetsClient(ctx, spreadsheetID, sheet, logger, option.WithHTTPClient(httpClient))
}

// NewSheetsClient builds a client from explicit API options.
func NewSheetsClient(ctx context.Context, spreadsheetID, sheet string, logger *log.Logger, opts ...option.ClientOption) (*SheetsClient, error) {
	if spreadsheetID == "" {
		return nil, ErrNotConfigured
	}
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if logger == nil {
		logger = log.Default()
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsClient{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		logger:        logger,
		pushTimeout:   DefaultPushTimeout,
		pullTimeout:   DefaultPullTimeout,
	}, nil
}

// SetTimeouts overrides the push/update and pull deadlines. Zero keeps the current value.
func (c *SheetsClient) SetTimeouts(push, pull time.Duration) {
	if push > 0 {
		c.pushTimeout = push
	}
	if pull > 0 {
		c.pullTimeout = pull
	}
}

func (c *SheetsClient) rangeOf(cells string) string {
	return fmt.Sprintf("%s!%s", c.sheet, cells)
}

// Pull reads columns A through P and skips the header row and blank rows.
func (c *SheetsClient) Pull(ctx context.Context) (res PullResult, err error) {
	start := time.Now()
	defer func() { observe(ActionGetData, start, statusOf(err), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.pullTimeout)
	defer cancel()

	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, c.rangeOf("A:P")).Context(ctx).Do()
	if err != nil {
		return PullResult{}, c.wrap(ctx, ActionGetData, err)
	}

	for i, raw := range resp.Values {
		values := cellStrings(raw)
		if i == 0 && len(values) > 0 && strings.EqualFold(values[0], convert.RemoteHeaders[0]) {
			continue
		}
		if isBlank(values) {
			continue
		}
		res.Rows = append(res.Rows, convert.RowFromValues(values))
	}
	res.TotalRows = len(resp.Values)
	res.Timestamp = models.FormatTime(time.Now())
	return res, nil
}

// Push appends rec unless column A already holds its id.
func (c *SheetsClient) Push(ctx context.Context, rec models.CustomerRecord) (res PushResult, err error) {
	start := time.Now()
	defer func() { observe(ActionAddCustomer, start, pushStatus(res, err), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	row, err := c.findRow(ctx, rec.ID)
	if err != nil {
		return PushResult{}, c.wrap(ctx, ActionAddCustomer, err)
	}
	if row > 0 {
		return PushResult{Duplicate: true, CustomerID: rec.ID, Message: "Customer already exists"}, nil
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(convert.ToRemoteRow(rec).Values())}}
	_, err = c.srv.Spreadsheets.Values.Append(c.spreadsheetID, c.rangeOf("A:P"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return PushResult{}, c.wrap(ctx, ActionAddCustomer, err)
	}
	return PushResult{Success: true, CustomerID: rec.ID}, nil
}

// Update rewrites the row whose column A equals rec.ID.
func (c *SheetsClient) Update(ctx context.Context, rec models.CustomerRecord) (res PushResult, err error) {
	start := time.Now()
	defer func() { observe(ActionUpdateCustomer, start, pushStatus(res, err), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	row, err := c.findRow(ctx, rec.ID)
	if err != nil {
		return PushResult{}, c.wrap(ctx, ActionUpdateCustomer, err)
	}
	if row == 0 {
		return PushResult{CustomerID: rec.ID}, fmt.Errorf("%w: %s", ErrNotFound, rec.ID)
	}

	cells := c.rangeOf(fmt.Sprintf("A%d:P%d", row, row))
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(convert.ToRemoteRow(rec).Values())}}
	if _, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, cells, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return PushResult{}, c.wrap(ctx, ActionUpdateCustomer, err)
	}
	return PushResult{Success: true, CustomerID: rec.ID}, nil
}

// SetupHeaders writes the header row into A1:P1.
func (c *SheetsClient) SetupHeaders(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe(ActionSetupHeaders, start, statusOf(err), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(convert.RemoteHeaders)}}
	if _, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, c.rangeOf("A1:P1"), vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return c.wrap(ctx, ActionSetupHeaders, err)
	}
	return nil
}

// Test checks that the spreadsheet is reachable.
func (c *SheetsClient) Test(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe(ActionTest, start, statusOf(err), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	if _, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return c.wrap(ctx, ActionTest, err)
	}
	return nil
}

// findRow returns the 1-based sheet row holding id, or 0.
func (c *SheetsClient) findRow(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, nil
	}
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, c.rangeOf("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for i, raw := range resp.Values {
		if len(raw) > 0 && convert.CellString(raw[0]) == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *SheetsClient) wrap(ctx context.Context, action string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.logger.Warn("sheets call timed out", "action", action)
		return fmt.Errorf("%w: %s", ErrTimeout, action)
	}
	c.logger.Warn("sheets call failed", "action", action, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrTransport, action, err)
}

func cellStrings(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = convert.CellString(v)
	}
	return out
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

func pushStatus(res PushResult, err error) string {
	if res.Duplicate {
		return StatusDuplicate
	}
	return statusOf(err)
}

var _ Remote = (*SheetsClient)(nil)
