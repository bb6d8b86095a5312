// Package registry tracks the last known availability of Hastic endpoints.
//
// A single [Store] is shared by every service instance pointed at the same
// endpoint, which is what allows availability alerts to be deduplicated
// across panel instances: an alert is only worth emitting when the recorded
// availability for an endpoint actually changes.
//
// The store is created once at application start (or lazily as the package
// default inside the hastic package) and lives for the process lifetime.
// All access is serialized by a single mutex.
package registry

import "sync"

// Store maps endpoint URLs to their last recorded availability.
//
// Store is safe for concurrent use. Writes are last-write-wins per endpoint
// key, matching the semantics panel instances expect when several of them
// probe the same server near-simultaneously.
type Store struct {
	mu     sync.Mutex
	states map[string]string
}

// NewStore creates an empty availability [Store].
//
// The store is immediately ready for use and never needs explicit teardown.
func NewStore() *Store {
	return &Store{states: make(map[string]string)}
}

// Record stores the availability for endpoint and reports whether it
// differs from the previously recorded value.
//
// The first observation for an endpoint always reports a change, so the
// very first probe of a fresh endpoint produces a user-visible alert.
func (s *Store) Record(endpoint, availability string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, seen := s.states[endpoint]
	s.states[endpoint] = availability
	return !seen || previous != availability
}

// Last returns the most recently recorded availability for endpoint.
// The second return value is false when the endpoint was never recorded.
func (s *Store) Last(endpoint string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	availability, ok := s.states[endpoint]
	return availability, ok
}
