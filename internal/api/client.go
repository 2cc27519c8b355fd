package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the questionnaire backend.
//
// The underlying http.Client has no timeout: a submission that never
// resolves keeps the caller waiting, which the submission controller
// documents as a known limitation.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
	validate bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit caps outgoing requests per second. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithValidation toggles JSON schema validation of response bodies.
func WithValidation(enabled bool) Option {
	return func(c *Client) { c.validate = enabled }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		limiter:  rate.NewLimiter(rate.Inf, 0),
		logger:   zap.NewNop(),
		validate: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Categories fetches every question category in server order.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.getJSON(ctx, ContextCategories, schemaCategories, "/question_categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Questions fetches the questions of a single category in server order.
func (c *Client) Questions(ctx context.Context, categoryID int64) ([]Question, error) {
	q := url.Values{"category_id": {strconv.FormatInt(categoryID, 10)}}
	var out []Question
	if err := c.getJSON(ctx, ContextQuestions, schemaQuestions, "/questions", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllQuestions fetches the full question directory.
func (c *Client) AllQuestions(ctx context.Context) ([]Question, error) {
	var out []Question
	if err := c.getJSON(ctx, ContextQuestions, schemaQuestions, "/questions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateResult submits answers. Every non-2xx status wraps ErrSubmitRejected;
// network failures wrap a *TransportError.
func (c *Client) CreateResult(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &FetchError{Context: ContextSubmit, Err: fmt.Errorf("marshal request: %w", err)}
	}

	status, raw, err := c.do(ctx, http.MethodPost, "/results", nil, body)
	if err != nil {
		return nil, &FetchError{Context: ContextSubmit, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{Context: ContextSubmit, Status: status, Err: ErrSubmitRejected}
	}

	return c.decodeResult(ContextSubmit, raw)
}

// Result fetches a stored result by id. 404 and 422 responses, as well as an
// empty id, yield a *NotFoundError.
func (c *Client) Result(ctx context.Context, id string) (*SubmitResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &NotFoundError{ResultID: id}
	}

	status, raw, err := c.do(ctx, http.MethodGet, "/results/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, &FetchError{Context: ContextResult, Err: err}
	}
	switch {
	case status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		return nil, &NotFoundError{ResultID: id}
	case status < 200 || status > 299:
		return nil, &FetchError{Context: ContextResult, Status: status, Err: fmt.Errorf("unexpected status")}
	}

	return c.decodeResult(ContextResult, raw)
}

func (c *Client) decodeResult(fc FetchContext, raw []byte) (*SubmitResult, error) {
	if c.validate {
		if err := validateBody(schemaResult, raw); err != nil {
			return nil, &FetchError{Context: fc, Err: err}
		}
	}
	var out SubmitResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &FetchError{Context: fc, Err: &InvalidResponseError{Body: raw, Err: err}}
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, fc FetchContext, schema schemaName, path string, query url.Values, out any) error {
	status, raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return &FetchError{Context: fc, Err: err}
	}
	if status != http.StatusOK {
		return &FetchError{Context: fc, Status: status, Err: fmt.Errorf("unexpected status")}
	}
	if c.validate {
		if err := validateBody(schema, raw); err != nil {
			return &FetchError{Context: fc, Err: err}
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &FetchError{Context: fc, Err: &InvalidResponseError{Body: raw, Err: err}}
	}
	return nil
}

// do performs a single request and returns the status and full body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, &TransportError{Err: err}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return 0, nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("backend request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp.StatusCode, raw, nil
}
