package hastic

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/songjiao/hastic-grafana-app/registry"
)

// svcConfig holds mutable state during Service construction.
type svcConfig struct {
	logger    *slog.Logger
	notifier  Notifier
	store     *registry.Store
	client    *http.Client
	headers   map[string]string
	timeout   time.Duration
	versionOK func(version string) bool
	isHastic  func(info ServerInfo) bool
}

// Option configures a [Service] during construction.
//
// Options return an error if validation fails. Built-in options:
// [WithLogger], [WithNotifier], [WithRegistry], [WithHTTPClient],
// [WithHeaders], [WithTimeout], [WithVersionCheck], [WithServerCheck].
type Option func(*svcConfig) error

// WithLogger sets a custom [slog.Logger] for the service.
// If not specified, [slog.Default] is used.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *svcConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithNotifier routes user-visible alerts to the given [Notifier],
// typically a bridge onto the host application's notification bus.
// If not specified, alerts are written to the service logger.
func WithNotifier(n Notifier) Option {
	return func(cfg *svcConfig) error {
		if n == nil {
			return errors.New("notifier cannot be nil")
		}
		cfg.notifier = n
		return nil
	}
}

// WithRegistry sets the availability store used to deduplicate alerts.
//
// Service instances that should deduplicate against each other must share
// one store. If not specified, a process-wide default store is used, so
// instances pointed at the same endpoint deduplicate out of the box.
func WithRegistry(store *registry.Store) Option {
	return func(cfg *svcConfig) error {
		if store == nil {
			return errors.New("registry store cannot be nil")
		}
		cfg.store = store
		return nil
	}
}

// WithHTTPClient sets the underlying HTTP client. Useful for tests and for
// host applications that carry their own transport configuration.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *svcConfig) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.client = client
		return nil
	}
}

// WithHeaders attaches custom HTTP headers to every request, e.g. for
// authenticating against a server behind a proxy.
func WithHeaders(headers map[string]string) Option {
	return func(cfg *svcConfig) error {
		cfg.headers = headers
		return nil
	}
}

// WithTimeout bounds every request with a client-side timeout. A timed-out
// request surfaces as a [ConnectivityError] with timeout wording.
// Defaults to 10 seconds; zero disables the client-side bound entirely,
// leaving timeout behavior to the transport.
func WithTimeout(d time.Duration) Option {
	return func(cfg *svcConfig) error {
		if d < 0 {
			return errors.New("timeout cannot be negative")
		}
		cfg.timeout = d
		return nil
	}
}

// WithVersionCheck replaces the predicate deciding whether a reported
// server version is supported.
func WithVersionCheck(ok func(version string) bool) Option {
	return func(cfg *svcConfig) error {
		if ok == nil {
			return errors.New("version check cannot be nil")
		}
		cfg.versionOK = ok
		return nil
	}
}

// WithServerCheck replaces the predicate deciding whether a root-endpoint
// response is recognizably from a Hastic server.
func WithServerCheck(ok func(info ServerInfo) bool) Option {
	return func(cfg *svcConfig) error {
		if ok == nil {
			return errors.New("server check cannot be nil")
		}
		cfg.isHastic = ok
		return nil
	}
}
