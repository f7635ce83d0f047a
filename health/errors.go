package health

import "errors"

var (
	// ErrCheckTimeout indicates a checker did not answer before the
	// aggregator's deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the
	// requested name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
