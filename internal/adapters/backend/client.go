// Package backend is the REST client for the club API. Every response is an envelope
// {success, data, message}; failures are mapped onto internal/errors codes so callers
// can branch with errors.IsUnauthenticated and friends.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/observability/metrics"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxBody     = 4 << 20
	defaultMessagePath = "message || error.message || error || errors[0].msg"
)

// Config configures a Client.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	ErrorMessagePath string
	MaxBodyBytes     int64
	HTTPClient       *http.Client
	Logger           *slog.Logger
}

// Client talks to the club API.
type Client struct {
	baseURL     string
	messagePath string
	maxBody     int64
	hc          *http.Client
	logger      *slog.Logger
}

// NewClient builds a Client. It fails when BaseURL is empty or the message path does not compile.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}

	path := strings.TrimSpace(cfg.ErrorMessagePath)
	if path == "" {
		path = defaultMessagePath
	}
	if _, err := jmespath.Compile(path); err != nil {
		return nil, fmt.Errorf("compile error message path %q: %w", path, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     base,
		messagePath: path,
		maxBody:     maxBody,
		hc:          hc,
		logger:      logger.With("component", "backend"),
	}, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type call struct {
	Method string
	Path   string
	Token  string
	Body   any
	Out    any
	// Unauthorized overrides the default message for a 401 without a body message.
	Unauthorized string
}

func (c *Client) do(ctx context.Context, in call) error {
	start := time.Now()
	err := c.roundTrip(ctx, in)
	metrics.BackendRequestDuration.WithLabelValues(in.Method).Observe(time.Since(start).Seconds())
	metrics.BackendRequestsTotal.WithLabelValues(in.Method, metrics.Classify(err)).Inc()
	return err
}

func (c *Client) roundTrip(ctx context.Context, in call) error {
	req, err := c.newRequest(ctx, in)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close response body", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBackend, "Could not read the server response.")
	}
	c.logger.DebugContext(ctx, "backend call",
		"method", in.Method,
		"path", in.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp.StatusCode, raw, in.Unauthorized)
	}
	return c.decode(raw, in.Out)
}

func (c *Client) newRequest(ctx context.Context, in call) (*http.Request, error) {
	var body io.Reader
	if in.Body != nil {
		b, err := json.Marshal(in.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", in.Method, in.Path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, in.Method, c.baseURL+in.Path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", in.Method, in.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.Token != "" {
		req.Header.Set("Authorization", "Bearer "+in.Token)
	}
	return req, nil
}

// decode unwraps the envelope into out. Payloads without a data member are decoded whole,
// which covers endpoints that put fields such as token and user at the top level.
func (c *Client) decode(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] != '{' {
		if out == nil {
			return nil
		}
		return unmarshalPayload(trimmed, out)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBackend, "The server sent an unexpected response.")
	}
	if env.Success != nil && !*env.Success {
		return &apperrors.AppError{
			Code:    apperrors.ErrCodeValidation,
			Message: c.message(trimmed, "The request could not be completed."),
		}
	}
	if out == nil {
		return nil
	}

	switch {
	case len(env.Data) == 0:
		return unmarshalPayload(trimmed, out)
	case bytes.Equal(env.Data, []byte("null")):
		return nil
	default:
		return unmarshalPayload(env.Data, out)
	}
}

func unmarshalPayload(payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBackend, "The server sent an unexpected response.")
	}
	return nil
}

func (c *Client) statusError(status int, raw []byte, unauthorized string) error {
	code, fallback := classifyStatus(status)
	if status == http.StatusUnauthorized && unauthorized != "" {
		fallback = unauthorized
	}
	return &apperrors.AppError{
		Code:    code,
		Message: c.message(raw, fallback),
		Cause:   fmt.Errorf("backend status %d", status),
	}
}

// message extracts a human-readable message from a failed response body using the
// configured JMESPath expression.
func (c *Client) message(raw []byte, fallback string) string {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fallback
	}
	res, err := jmespath.Search(c.messagePath, doc)
	if err != nil {
		return fallback
	}
	if s, ok := res.(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return fallback
}

func classifyStatus(status int) (apperrors.ErrorCode, string) {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.ErrCodeValidation, "Please check your input and try again."
	case status == http.StatusUnauthorized:
		return apperrors.ErrCodeUnauthenticated, "Your session has expired. Please sign in again."
	case status == http.StatusForbidden:
		return apperrors.ErrCodeForbidden, "You do not have permission to do that."
	case status == http.StatusNotFound:
		return apperrors.ErrCodeNotFound, "Not found."
	case status == http.StatusConflict:
		return apperrors.ErrCodeConflict, "That record already exists."
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return apperrors.ErrCodeTimeout, "The server took too long to respond."
	default:
		return apperrors.ErrCodeBackend, "The club server is having trouble. Please try again later."
	}
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "Request was canceled.")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "The server took too long to respond.")
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "The server took too long to respond.")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeBackend, "Unable to reach the club server.")
}
