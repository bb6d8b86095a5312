package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingAlerter captures connectivity transitions for assertions.
type recordingAlerter struct {
	calls    int
	timeouts []bool
}

func (a *recordingAlerter) ConnectivityLost(timeout bool) {
	a.calls++
	a.timeouts = append(a.timeouts, timeout)
}

func newTestDispatcher(base string, timeout time.Duration) (*Dispatcher, *recordingAlerter) {
	alerter := &recordingAlerter{}
	return New(base, nil, timeout, nil, alerter, testLogger()), alerter
}

// TestSend_GatewayTimeoutIsTimeoutFailure verifies that a 504 response is
// classified as a connectivity failure with timeout wording and clears the
// reachability flag.
func TestSend_GatewayTimeoutIsTimeoutFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer server.Close()

	d, alerter := newTestDispatcher(server.URL, 0)
	d.SetUp(true)

	_, err := d.Get(context.Background(), "/", nil)

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if !connErr.Timeout {
		t.Error("expected timeout classification for 504")
	}
	if connErr.Status != http.StatusGatewayTimeout {
		t.Errorf("expected status 504, got %d", connErr.Status)
	}
	if connErr.CorrelationID == "" {
		t.Error("expected a correlation id on the error")
	}
	if d.Up() {
		t.Error("expected reachability flag cleared")
	}
	if alerter.calls != 1 || !alerter.timeouts[0] {
		t.Errorf("expected one timeout alert, got %+v", alerter)
	}
}

// TestSend_AbortedTransportIsTimeoutFailure verifies that a request the
// transport never completed surfaces with the abort sentinel status and
// timeout wording.
func TestSend_AbortedTransportIsTimeoutFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	d, alerter := newTestDispatcher(server.URL, 20*time.Millisecond)

	_, err := d.Get(context.Background(), "/", nil)

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if connErr.Status != StatusAborted {
		t.Errorf("expected abort sentinel status %d, got %d", StatusAborted, connErr.Status)
	}
	if !connErr.Timeout {
		t.Error("expected timeout classification for aborted transport")
	}
	if alerter.calls != 1 {
		t.Errorf("expected one alert, got %d", alerter.calls)
	}
}

// TestSend_UnreachableHostIsConnectivityFailure verifies that a refused
// connection is a non-timeout connectivity failure.
func TestSend_UnreachableHostIsConnectivityFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	d, alerter := newTestDispatcher(server.URL, 0)

	_, err := d.Get(context.Background(), "/", nil)

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if connErr.Timeout {
		t.Error("expected non-timeout classification for refused connection")
	}
	if alerter.calls != 1 || alerter.timeouts[0] {
		t.Errorf("expected one generic alert, got %+v", alerter)
	}
}

// TestSend_BadGatewayPropagatesGenericFailure verifies that a completed
// response with a status above 500 (other than 504) propagates as a
// generic connectivity failure.
func TestSend_BadGatewayPropagatesGenericFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d, alerter := newTestDispatcher(server.URL, 0)

	_, err := d.Get(context.Background(), "/", nil)

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if connErr.Timeout {
		t.Error("expected generic classification for 502")
	}
	if alerter.calls != 1 {
		t.Errorf("expected one alert, got %d", alerter.calls)
	}
}

// TestSend_ApplicationErrorIsSuppressed verifies the preserved quirk: a
// completed response with a status of 500 or below resolves without an
// error and without a body, and marks the server reachable.
func TestSend_ApplicationErrorIsSuppressed(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		d, alerter := newTestDispatcher(server.URL, 0)

		resp, err := d.Get(context.Background(), "/", nil)
		if err != nil {
			t.Fatalf("status %d: expected suppressed response, got error %v", status, err)
		}
		if !resp.Suppressed {
			t.Errorf("status %d: expected Suppressed", status)
		}
		if resp.Body != nil {
			t.Errorf("status %d: expected nil body", status)
		}
		if resp.StatusCode != status {
			t.Errorf("expected status %d preserved, got %d", status, resp.StatusCode)
		}
		if !d.Up() {
			t.Errorf("status %d: expected reachability flag set", status)
		}
		if alerter.calls != 0 {
			t.Errorf("status %d: expected no alert, got %d", status, alerter.calls)
		}

		server.Close()
	}
}

// TestSend_SuccessReturnsBody verifies the success path returns the body
// and marks the server reachable.
func TestSend_SuccessReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	d, _ := newTestDispatcher(server.URL, 0)

	resp, err := d.Get(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if !d.Up() {
		t.Error("expected reachability flag set")
	}
}

// TestSend_QueryParametersAndBodies verifies that GET and DELETE payloads
// travel as query parameters while POST and PATCH carry JSON bodies.
func TestSend_QueryParametersAndBodies(t *testing.T) {
	type seen struct {
		method string
		query  url.Values
		body   map[string]any
	}
	var (
		mu   sync.Mutex
		last seen
	)
	got := func() seen {
		mu.Lock()
		defer mu.Unlock()
		return last
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, query: r.URL.Query()}
		_ = json.NewDecoder(r.Body).Decode(&s.body)
		mu.Lock()
		last = s
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	d, _ := newTestDispatcher(server.URL, 0)
	ctx := context.Background()

	params := url.Values{}
	params.Set("id", "unit-1")

	if _, err := d.Get(ctx, "/analyticUnits/status", params); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if s := got(); s.query.Get("id") != "unit-1" {
		t.Errorf("expected GET query parameter, got %v", s.query)
	}

	if _, err := d.Delete(ctx, "/analyticUnits", params); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if s := got(); s.method != http.MethodDelete || s.query.Get("id") != "unit-1" {
		t.Errorf("expected DELETE query parameter, got %v %v", s.method, s.query)
	}

	if _, err := d.Patch(ctx, "/analyticUnits/alert", map[string]any{"alert": true}); err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if s := got(); s.method != http.MethodPatch || s.body["alert"] != true {
		t.Errorf("expected PATCH body, got %v %v", s.method, s.body)
	}

	if _, err := d.Post(ctx, "/analyticUnits/detect", map[string]any{"ids": []string{"a"}}); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if s := got(); s.method != http.MethodPost || s.body["ids"] == nil {
		t.Errorf("expected POST body, got %v %v", s.method, s.body)
	}
}
