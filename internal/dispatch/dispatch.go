// Package dispatch wraps HTTP access to a Hastic server.
//
// Every request funnels through a single classification policy. Failures
// that never produced a response, and responses with a status above 500,
// are connectivity failures: the reachability flag is cleared, the alerter
// is told, and a typed error propagates to the caller. Completed responses
// with a status of 500 or below are treated as proof the server is
// reachable, even when the status signals an application error; in that
// case the call resolves with no error and no body, and callers that need
// to tell such a response from success must inspect [Response.StatusCode].
// See DESIGN.md for why that last behavior is kept.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when several
// panel instances share one process
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// StatusAborted is the sentinel status recorded when the transport never
// completed the request (connection refused, timeout, cancelled context).
const StatusAborted = -1

// Response holds the outcome of a completed request.
type Response struct {
	// Body is the response body, limited to 1MB. Nil for suppressed
	// responses.
	Body []byte

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Suppressed marks a completed response whose status signalled an
	// application error (non-2xx, at most 500). The body is discarded
	// and no error is returned; see the package comment.
	Suppressed bool
}

// Alerter receives connectivity transitions for user-visible alerting.
// The hastic service implements it on top of its notification bus and
// availability registry.
type Alerter interface {
	ConnectivityLost(timeout bool)
}

// ConnectivityError reports a request that never completed or came back
// with a status above 500.
type ConnectivityError struct {
	// Status is the HTTP status of the failed response, or StatusAborted
	// when the transport never completed.
	Status int

	// StatusText is the human-readable status the error carries to the
	// caller.
	StatusText string

	// Timeout is true for gateway timeouts (504) and aborted transports.
	Timeout bool

	// CorrelationID ties the error to the server-side log entry.
	CorrelationID string
}

func (e *ConnectivityError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("hastic server timed out: %s", e.StatusText)
	}
	return fmt.Sprintf("no connection to hastic server: %s", e.StatusText)
}

// Dispatcher issues requests against a single Hastic endpoint and keeps a
// per-instance reachability flag updated by every call outcome.
type Dispatcher struct {
	base       string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
	alerter    Alerter
	logger     *slog.Logger
	up         atomic.Bool
}

// New creates a [Dispatcher] for the given base URL.
//
// When client is nil a pooled default is used. timeout bounds each request
// via context; zero means no client-side timeout, leaving timeout behavior
// to the transport. headers are attached to every request.
func New(base string, headers map[string]string, timeout time.Duration, client *http.Client, alerter Alerter, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{
			// no default timeout - per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		}
	}
	return &Dispatcher{
		base:       base,
		headers:    headers,
		timeout:    timeout,
		httpClient: client,
		alerter:    alerter,
		logger:     logger,
	}
}

// Up reports whether the most recent request reached the server.
func (d *Dispatcher) Up() bool {
	return d.up.Load()
}

// SetUp overrides the reachability flag. The availability check uses it to
// reconcile the flag with the registry after protocol-level validation.
func (d *Dispatcher) SetUp(up bool) {
	d.up.Store(up)
}

// Get issues a GET request. The payload travels as query parameters.
func (d *Dispatcher) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return d.send(ctx, http.MethodGet, path, params, nil)
}

// Delete issues a DELETE request. The payload travels as query parameters.
func (d *Dispatcher) Delete(ctx context.Context, path string, params url.Values) (*Response, error) {
	return d.send(ctx, http.MethodDelete, path, params, nil)
}

// Post issues a POST request with a JSON body.
func (d *Dispatcher) Post(ctx context.Context, path string, body any) (*Response, error) {
	return d.send(ctx, http.MethodPost, path, nil, body)
}

// Patch issues a PATCH request with a JSON body.
func (d *Dispatcher) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return d.send(ctx, http.MethodPatch, path, nil, body)
}

func (d *Dispatcher) send(ctx context.Context, method, path string, params url.Values, body any) (*Response, error) {
	target := d.base + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range d.headers {
		req.Header.Set(key, value)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, d.connectivityFailure(method, path, StatusAborted, isTimeout(err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode > 500 {
		timeout := resp.StatusCode == http.StatusGatewayTimeout
		return nil, d.connectivityFailure(method, path, resp.StatusCode, timeout, nil)
	}

	// the transport completed and the status is at most 500: the server is
	// reachable regardless of what the status says
	d.up.Store(true)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		return &Response{StatusCode: resp.StatusCode, Suppressed: true}, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Body: data, StatusCode: resp.StatusCode}, nil
}

// connectivityFailure clears the reachability flag, notifies the alerter
// and builds the error carried back to the caller. The correlation ID ties
// the returned error to the log entry.
func (d *Dispatcher) connectivityFailure(method, path string, status int, timeout bool, cause error) error {
	d.up.Store(false)

	correlationID := uuid.NewString()
	statusText := http.StatusText(status)
	if status == StatusAborted {
		statusText = "request aborted"
	}

	attrs := []any{
		"correlation_id", correlationID,
		"method", method,
		"path", path,
		"status", status,
		"timeout", timeout,
	}
	if cause != nil {
		attrs = append(attrs, "error", cause.Error())
	}
	d.logger.Error("hastic request failed", attrs...)

	if d.alerter != nil {
		d.alerter.ConnectivityLost(timeout)
	}

	return &ConnectivityError{
		Status:        status,
		StatusText:    statusText,
		Timeout:       timeout,
		CorrelationID: correlationID,
	}
}

// isTimeout reports whether a transport error was a timeout rather than a
// plain connection failure, so the alert can use timeout-specific wording.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
