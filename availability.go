package hastic

import (
	"context"
	"fmt"
)

// ConnectivityLost implements the dispatcher's alerter hook. It is invoked
// whenever a request fails to reach the server, with timeout-specific
// wording for gateway timeouts and aborted transports.
func (s *Service) ConnectivityLost(timeout bool) {
	if timeout {
		s.alert(NotAvailable, LevelError,
			fmt.Sprintf("Timeout while connecting to Hastic server at %s", s.url))
		return
	}
	s.alert(NotAvailable, LevelError,
		fmt.Sprintf("No connection to Hastic server at %s", s.url))
}

// CheckAvailability probes the endpoint root and reports whether a
// supported Hastic server answers there.
//
// Protocol and version mismatches are reported through the notifier and
// yield false rather than an error, so callers can distinguish "determined
// unavailable" (false) from "could not determine availability" (which the
// probe logs and also folds into false after the dispatcher has alerted).
// On return the per-instance reachability flag is reconciled with the
// registry entry, and the testing flag is cleared on every path.
func (s *Service) CheckAvailability(ctx context.Context) bool {
	s.testing.Store(true)
	defer s.testing.Store(false)

	if s.url == "" {
		// unreachable after New; kept for callers that zero-construct
		s.notifier.Notify(LevelWarning, "Hastic server address is not configured")
		return false
	}

	info, err := s.ServerInfo(ctx)
	if err != nil {
		// the dispatcher has already alerted and recorded NotAvailable
		s.logger.Error("availability probe failed", "url", s.url, "error", err.Error())
		return false
	}
	if !s.isHastic(info) {
		s.dispatcher.SetUp(false)
		s.alert(NotAvailable, LevelError, fmt.Sprintf(
			"Request to %s succeeded but the response is not from a Hastic server, check the URL",
			s.url))
		return false
	}
	if !s.versionOK(info.PackageVersion) {
		s.dispatcher.SetUp(false)
		s.alert(NotAvailable, LevelError, fmt.Sprintf(
			"Hastic server at %s has unsupported version %s, this plugin works with %s",
			s.url, info.PackageVersion, supportedServerVersion))
		return false
	}

	s.dispatcher.SetUp(true)
	s.alert(Available, LevelInfo, fmt.Sprintf("Hastic server connected at %s", s.url))
	return true
}

// Testing reports whether an availability probe is currently in flight.
func (s *Service) Testing() bool {
	return s.testing.Load()
}

// alert records the availability in the shared registry and emits the
// message only when the recorded value changed for this endpoint. The
// first observation of an endpoint always emits.
func (s *Service) alert(state Availability, level Level, message string) {
	if s.store.Record(s.url, string(state)) {
		s.notifier.Notify(level, message)
	}
	s.logger.Debug("availability recorded", "url", s.url, "state", string(state))
}
