package index

import (
	"errors"
	"fmt"

	"github.com/coregx/fsmindex/automaton"
)

// ErrCancelled is returned by every pending and future read once a handle
// has been cancelled, whether explicitly via Cancel or because a worker
// hit an internal error during the build.
var ErrCancelled = errors.New("fsmindex: index build cancelled")

// BuildError records an internal inconsistency the builder detected while
// computing a state's token map (e.g. the walker returning a state id the
// automaton never assigned). A BuildError always ends the build:
// detecting one marks the handle Cancelled, with the error attached as
// the cause.
type BuildError struct {
	State automaton.StateID
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("fsmindex: building state %d: %v", e.State, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
