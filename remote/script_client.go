// ABOUTME: Client for the spreadsheet's script web-app endpoint
// ABOUTME: Correlates GET requests and callback responses through per-call tokens
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/quotedesk/convert"
	"github.com/harperreed/quotedesk/models"
	"github.com/oklog/ulid/v2"
)

const tokenPrefix = "cb_"

// maxBodySize bounds a response; a full pull of a few thousand rows is well under it.
const maxBodySize = 16 << 20

// ScriptClient talks to the script endpoint. Each call carries its own
// callback token, so concurrent pushes are independent.
type ScriptClient struct {
	endpoint    string
	httpClient  *http.Client
	registry    *Registry
	logger      *log.Logger
	pushTimeout time.Duration
	pullTimeout time.Duration
}

// ScriptOption customizes a ScriptClient.
type ScriptOption func(*ScriptClient)

func WithHTTPClient(c *http.Client) ScriptOption {
	return func(s *ScriptClient) { s.httpClient = c }
}

func WithLogger(l *log.Logger) ScriptOption {
	return func(s *ScriptClient) { s.logger = l }
}

// WithTimeouts overrides the push/update and pull deadlines. Zero keeps the default.
func WithTimeouts(push, pull time.Duration) ScriptOption {
	return func(s *ScriptClient) {
		if push > 0 {
			s.pushTimeout = push
		}
		if pull > 0 {
			s.pullTimeout = pull
		}
	}
}

// NewScriptClient creates a client for endpoint.
func NewScriptClient(endpoint string, opts ...ScriptOption) (*ScriptClient, error) {
	if endpoint == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid script endpoint: %w", err)
	}

	c := &ScriptClient{
		endpoint:    endpoint,
		httpClient:  http.DefaultClient,
		registry:    NewRegistry(),
		logger:      log.Default(),
		pushTimeout: DefaultPushTimeout,
		pullTimeout: DefaultPullTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Registry exposes the pending-call registry.
func (c *ScriptClient) Registry() *Registry {
	return c.registry
}

func newToken() string {
	return tokenPrefix + ulid.Make().String()
}

// Push adds rec as a new row. The remote refuses ids it already has and
// reports that as Duplicate.
func (c *ScriptClient) Push(ctx context.Context, rec models.CustomerRecord) (PushResult, error) {
	env, err := c.call(ctx, ActionAddCustomer, convert.ToRemoteRow(rec).Params(), c.pushTimeout)
	if err != nil {
		return PushResult{}, err
	}
	return env.pushResult(ActionAddCustomer)
}

// Update rewrites the row with rec's id.
func (c *ScriptClient) Update(ctx context.Context, rec models.CustomerRecord) (PushResult, error) {
	env, err := c.call(ctx, ActionUpdateCustomer, convert.ToRemoteRow(rec).Params(), c.pushTimeout)
	if err != nil {
		return PushResult{}, err
	}
	return env.pushResult(ActionUpdateCustomer)
}

// Pull fetches every data row.
func (c *ScriptClient) Pull(ctx context.Context) (PullResult, error) {
	env, err := c.call(ctx, ActionGetData, nil, c.pullTimeout)
	if err != nil {
		return PullResult{}, err
	}
	return env.pullResult()
}

func (c *ScriptClient) SetupHeaders(ctx context.Context) error {
	return c.simple(ctx, ActionSetupHeaders)
}

func (c *ScriptClient) Test(ctx context.Context) error {
	return c.simple(ctx, ActionTest)
}

func (c *ScriptClient) simple(ctx context.Context, action string) error {
	env, err := c.call(ctx, action, nil, c.pushTimeout)
	if err != nil {
		return err
	}
	if env.Status != StatusSuccess {
		return fmt.Errorf("%w: %s", ErrRemote, env.message())
	}
	return nil
}

type callOutcome struct {
	payload []byte
	err     error
}

// call registers a token, issues the request and waits for the matching
// callback or the deadline. The token is unregistered on every path.
func (c *ScriptClient) call(ctx context.Context, action string, params url.Values, timeout time.Duration) (env envelope, err error) {
	start := time.Now()
	defer func() { observe(action, start, env.Status, err) }()

	token := newToken()
	handle := c.registry.Register(token)
	defer c.registry.Unregister(token)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("action", action)
	q.Set("callback", token)

	failed := make(chan error, 1)
	go func() {
		if err := c.fetch(ctx, token, q); err != nil {
			failed <- err
		}
	}()

	c.logger.Debug("remote call", "action", action, "token", token)

	select {
	case payload := <-handle:
		return decodeEnvelope(payload)
	case err := <-failed:
		if ctx.Err() != nil {
			return envelope{}, c.deadlineError(ctx, action, timeout)
		}
		c.logger.Warn("remote call failed", "action", action, "error", err)
		return envelope{}, err
	case <-ctx.Done():
		return envelope{}, c.deadlineError(ctx, action, timeout)
	}
}

func (c *ScriptClient) deadlineError(ctx context.Context, action string, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.logger.Warn("remote call timed out", "action", action, "timeout", timeout)
		return fmt.Errorf("%w: %s after %s", ErrTimeout, action, timeout)
	}
	return ctx.Err()
}

// fetch performs the request and routes the response through the registry.
func (c *ScriptClient) fetch(ctx context.Context, token string, q url.Values) error {
	reqURL := c.endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	name, payload, err := ParseJSONP(body)
	if err != nil {
		return err
	}
	if name == "" {
		name = token
	}
	if !c.registry.Dispatch(name, payload) {
		return fmt.Errorf("%w: callback %q has no pending request", ErrMalformedResponse, name)
	}
	return nil
}

var _ Remote = (*ScriptClient)(nil)
