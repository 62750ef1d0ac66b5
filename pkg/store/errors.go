package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrComponentNotFound indicates that no component exists with the given name.
var ErrComponentNotFound = errors.New("component not found")

// ErrRunNotFound indicates that no component run exists with the given ID.
var ErrRunNotFound = errors.New("component run not found")

// ErrPointerNotFound indicates that no IO pointer exists with the given name.
var ErrPointerNotFound = errors.New("io pointer not found")

// ErrNoProducingRun indicates that no committed run lists the requested
// artifact among its outputs. Raised by the trace entry points; plain
// queries that find nothing return empty results instead.
var ErrNoProducingRun = errors.New("no run produced the requested artifact")

// ErrComponentHasRuns indicates a component delete was attempted while
// historical runs still reference it and the caller did not request a cascade.
var ErrComponentHasRuns = errors.New("component has recorded runs")

// IncompleteRunError reports a commit attempted on a run that is missing
// required fields. Carries which fields are missing so callers can repair
// the run before retrying.
type IncompleteRunError struct {
	ComponentName string
	Missing       []string
}

func (e *IncompleteRunError) Error() string {
	return fmt.Sprintf("component run for %q is incomplete: missing %s",
		e.ComponentName, strings.Join(e.Missing, ", "))
}
