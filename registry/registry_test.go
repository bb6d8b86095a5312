package registry

import "testing"

// TestStore_FirstObservationCounts verifies that the very first recorded
// availability for an endpoint reports a change, so the first probe of a
// fresh endpoint always produces an alert.
func TestStore_FirstObservationCounts(t *testing.T) {
	store := NewStore()

	if !store.Record("http://localhost:8000", "available") {
		t.Error("expected first observation to report a change")
	}
}

// TestStore_UnchangedValueSuppressed verifies that recording the same
// availability twice reports no change the second time.
func TestStore_UnchangedValueSuppressed(t *testing.T) {
	store := NewStore()

	store.Record("http://localhost:8000", "available")
	if store.Record("http://localhost:8000", "available") {
		t.Error("expected unchanged value to report no change")
	}
}

// TestStore_TransitionReported verifies that flipping availability back
// and forth reports a change on every flip.
func TestStore_TransitionReported(t *testing.T) {
	store := NewStore()

	store.Record("http://localhost:8000", "available")
	if !store.Record("http://localhost:8000", "not available") {
		t.Error("expected transition to not available to report a change")
	}
	if !store.Record("http://localhost:8000", "available") {
		t.Error("expected transition back to available to report a change")
	}
}

// TestStore_EndpointsIndependent verifies that entries for different
// endpoints do not interfere.
func TestStore_EndpointsIndependent(t *testing.T) {
	store := NewStore()

	store.Record("http://a:8000", "available")
	if !store.Record("http://b:8000", "available") {
		t.Error("expected first observation of a second endpoint to report a change")
	}
}

// TestStore_Last verifies the last-recorded lookup.
func TestStore_Last(t *testing.T) {
	store := NewStore()

	if _, ok := store.Last("http://localhost:8000"); ok {
		t.Error("expected no entry before the first record")
	}

	store.Record("http://localhost:8000", "available")
	store.Record("http://localhost:8000", "not available")

	got, ok := store.Last("http://localhost:8000")
	if !ok || got != "not available" {
		t.Errorf("expected last recorded value %q, got %q (ok=%v)", "not available", got, ok)
	}
}
