package hastic

import (
	"errors"
	"fmt"

	"github.com/songjiao/hastic-grafana-app/internal/dispatch"
)

// ConnectivityError reports a request that never completed or came back
// with a status above 500. Match it with errors.As to distinguish
// connectivity failures from data-contract failures.
type ConnectivityError = dispatch.ConnectivityError

var (
	// ErrEndpointRequired is returned by New when the Hastic datasource
	// URL is unset or empty. No request is ever attempted in that case.
	ErrEndpointRequired = errors.New("hastic datasource url is required")

	// ErrUnitIDRequired is returned by operations and poll factories that
	// were given an empty analytic unit id.
	ErrUnitIDRequired = errors.New("analytic unit id is required")

	// ErrSequenceStopped is returned by Sequence.Next after Stop.
	ErrSequenceStopped = errors.New("poll sequence stopped")
)

// DataContractError reports a response that is well-formed HTTP-wise but
// missing a field the contract requires. It is never retried.
type DataContractError struct {
	Path  string
	Field string
}

func (e *DataContractError) Error() string {
	return fmt.Sprintf("response from %s is missing required field %q", e.Path, e.Field)
}
