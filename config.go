package fsmindex

import "runtime"

// Config controls index-build behavior and resource limits.
//
// Configuration options affect:
//   - Worker pool size for the parallel BFS builder
//   - Compile-time limits on automaton size
//
// Example:
//
//	config := fsmindex.DefaultConfig()
//	config.WorkerThreads = 4
//	idx, err := fsmindex.BuildWithConfig(ctx, pattern, vocabulary, config)
type Config struct {
	// WorkerThreads bounds the BFS builder's worker pool. Zero means
	// runtime.GOMAXPROCS(0). Overridden by the WORKER_THREADS environment
	// variable when that is set to a positive integer.
	// Default: 0 (GOMAXPROCS)
	WorkerThreads int

	// MaxAutomatonStates caps the number of DFA states subset construction
	// may produce before giving up with automaton.ErrTooComplex.
	// Default: 100000
	MaxAutomatonStates int
}

// DefaultConfig returns a configuration with sensible defaults.
//
// Defaults favor using all available cores for the builder and a generous
// but finite automaton size ceiling, so a pathological pattern fails fast
// instead of exhausting memory.
//
// Example:
//
//	config := fsmindex.DefaultConfig()
//	config.WorkerThreads = runtime.NumCPU() / 2
func DefaultConfig() Config {
	return Config{
		WorkerThreads:      0,
		MaxAutomatonStates: 100_000,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any parameter is out of range.
//
// Valid ranges:
//   - WorkerThreads: 0 (meaning GOMAXPROCS) or a positive integer
//   - MaxAutomatonStates: 1 to 10,000,000
func (c Config) Validate() error {
	if c.WorkerThreads < 0 {
		return &ConfigError{Field: "WorkerThreads", Message: "must be >= 0"}
	}
	if c.MaxAutomatonStates < 1 || c.MaxAutomatonStates > 10_000_000 {
		return &ConfigError{Field: "MaxAutomatonStates", Message: "must be between 1 and 10,000,000"}
	}
	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "fsmindex: invalid config: " + e.Field + ": " + e.Message
}

func (c Config) workers() int {
	if c.WorkerThreads > 0 {
		return c.WorkerThreads
	}
	return runtime.GOMAXPROCS(0)
}
