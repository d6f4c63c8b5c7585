package automaton

import (
	"errors"
	"fmt"
)

// Common automaton compilation errors.
var (
	// ErrTooComplex indicates the pattern exceeded a size guard: the AST
	// recursion depth or the repeat-count bound during NFA construction, or
	// the state budget during subset construction.
	ErrTooComplex = errors.New("fsmindex: automaton too complex")

	// ErrUnsupportedConstruct indicates the pattern uses a regex feature
	// that has no meaningful translation into a character-level DFA —
	// currently word-boundary assertions (\b, \B), which require
	// look-around context the DFA descriptor has no slot for.
	ErrUnsupportedConstruct = errors.New("fsmindex: unsupported regex construct")
)

// CompileError wraps a compilation failure with the offending pattern.
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("fsmindex: compile %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}
