package hastic

import "encoding/json"

// Availability is the last known reachability of a Hastic endpoint, as
// recorded in the availability registry.
type Availability string

const (
	// Available means the endpoint answered the last probe with a
	// supported Hastic server response.
	Available Availability = "available"

	// NotAvailable means the last probe failed, answered with something
	// that is not a Hastic server, or reported an unsupported version.
	NotAvailable Availability = "not available"
)

// Segment is a labeled or user-marked time interval associated with an
// analytic unit, used for training and feedback.
type Segment struct {
	// ID is the server-assigned identifier. Empty for segments that have
	// not been submitted yet.
	ID string `json:"id,omitempty"`

	// From and To bound the interval in epoch milliseconds.
	From int64 `json:"from"`
	To   int64 `json:"to"`

	// Labeled marks a positive training label.
	Labeled bool `json:"labeled"`

	// Deleted marks a negative label (a span the user rejected).
	Deleted bool `json:"deleted"`
}

// DetectionSpan is a server-reported interval flagged by a unit's detector.
type DetectionSpan struct {
	From   int64  `json:"from"`
	To     int64  `json:"to"`
	Status string `json:"status"`
}

// Window bounds a [From, To) time range in epoch milliseconds.
type Window struct {
	From int64
	To   int64
}

// AnalyticUnitStatus is the processing state of an analytic unit.
type AnalyticUnitStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// StatusNotFound is the sentinel status reported when the status endpoint
// answers 404 for a unit, so poll consumers see a stable shape instead of
// an error.
const StatusNotFound = "404"

// ServerInfo is a snapshot of the remote server's build and runtime
// metadata, returned by the root endpoint and used for compatibility
// checks. It is never persisted.
type ServerInfo struct {
	NodeVersion         string  `json:"nodeVersion"`
	PackageVersion      string  `json:"packageVersion"`
	NPMUserAgent        string  `json:"npmUserAgent"`
	Docker              bool    `json:"docker"`
	ZMQConnectionString string  `json:"zmqConnectionString"`
	ServerPort          int     `json:"serverPort"`
	Git                 GitInfo `json:"git"`
}

// GitInfo identifies the server build.
type GitInfo struct {
	Branch     string `json:"branch"`
	CommitHash string `json:"commitHash"`
}

// HSRResult bundles the time-series result for an analytic unit and range.
// The series payloads are opaque to this layer.
type HSRResult struct {
	HSR        json.RawMessage `json:"hsr"`
	LowerBound json.RawMessage `json:"lowerBound,omitempty"`
	UpperBound json.RawMessage `json:"upperBound,omitempty"`
}

// CreateUnitRequest carries the fields needed to create an analytic unit.
// Metric and Datasource are serialized domain objects owned by the caller;
// Fields holds the unit-type specific settings and is merged into the
// outgoing payload next to the fixed fields.
type CreateUnitRequest struct {
	GrafanaURL string
	PanelID    string
	Metric     json.RawMessage
	Datasource json.RawMessage
	Fields     map[string]any
}
