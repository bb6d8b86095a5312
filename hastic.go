package hastic

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/songjiao/hastic-grafana-app/internal/dispatch"
	"github.com/songjiao/hastic-grafana-app/registry"
)

const (
	// supportedServerVersion is the Hastic server release line this
	// client is built against. The availability check rejects servers
	// reporting a different line.
	supportedServerVersion = "0.4"

	defaultRequestTimeout = 10 * time.Second
)

var (
	sharedStoreOnce sync.Once
	sharedStoreInst *registry.Store
)

// sharedStore returns the process-wide default availability store, created
// lazily on first use. Service instances without an explicit WithRegistry
// store all share it, so instances pointed at the same endpoint
// deduplicate alerts against one entry.
func sharedStore() *registry.Store {
	sharedStoreOnce.Do(func() { sharedStoreInst = registry.NewStore() })
	return sharedStoreInst
}

// Service mediates all communication between a visualization panel and a
// remote Hastic anomaly-detection server.
//
// Construct it with [New]; the endpoint URL is immutable afterwards.
// A Service is safe for concurrent use. Independent operations (two
// polling sequences, or a poll concurrent with a CRUD call) may be in
// flight at once; the reachability flag and the availability registry are
// last-write-wins under explicit synchronization.
type Service struct {
	url        string
	dispatcher *dispatch.Dispatcher
	store      *registry.Store
	notifier   Notifier
	logger     *slog.Logger
	versionOK  func(version string) bool
	isHastic   func(info ServerInfo) bool
	testing    atomic.Bool
}

// New creates a [Service] for the Hastic server at hasticURL.
//
// The URL is required; construction fails with [ErrEndpointRequired]
// before any request is attempted when it is unset or empty, and with a
// validation error when it has no scheme.
//
// Example:
//
//	svc, err := hastic.New("http://localhost:8000",
//	    hastic.WithNotifier(busBridge),
//	    hastic.WithTimeout(5 * time.Second),
//	)
func New(hasticURL string, opts ...Option) (*Service, error) {
	if strings.TrimSpace(hasticURL) == "" {
		return nil, ErrEndpointRequired
	}
	parsed, err := url.Parse(hasticURL)
	if err != nil {
		return nil, fmt.Errorf("invalid hastic datasource url: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, errors.New("hastic datasource url must have a scheme (http:// or https://)")
	}

	cfg := &svcConfig{
		timeout:   defaultRequestTimeout,
		versionOK: defaultVersionCheck,
		isHastic:  defaultServerCheck,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := cfg.notifier
	if notifier == nil {
		notifier = slogNotifier{logger: logger}
	}
	store := cfg.store
	if store == nil {
		store = sharedStore()
	}

	s := &Service{
		url:       strings.TrimRight(hasticURL, "/"),
		store:     store,
		notifier:  notifier,
		logger:    logger,
		versionOK: cfg.versionOK,
		isHastic:  cfg.isHastic,
	}
	// the service itself is the dispatcher's alerter: connectivity
	// failures funnel into the deduplicated availability alerts
	s.dispatcher = dispatch.New(s.url, cfg.headers, cfg.timeout, cfg.client, s, logger)
	return s, nil
}

// URL returns the configured Hastic datasource URL.
func (s *Service) URL() string {
	return s.url
}

// IsUp reports whether the most recent request reached the server. It is
// updated by every dispatched call, unlike the registry entry, which only
// changes on explicit availability transitions.
func (s *Service) IsUp() bool {
	return s.dispatcher.Up()
}

// defaultVersionCheck accepts servers on the supported release line.
func defaultVersionCheck(version string) bool {
	return version == supportedServerVersion ||
		strings.HasPrefix(version, supportedServerVersion+".")
}

// defaultServerCheck accepts any response carrying a package version,
// which only a Hastic server reports on its root endpoint.
func defaultServerCheck(info ServerInfo) bool {
	return info.PackageVersion != ""
}
