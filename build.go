// Package fsmindex builds a lazily-populated index from a token vocabulary
// and a regex, exposing it as a handle that answers "which tokens can
// extend this generation" and "which state does emitting this token reach"
// without ever materializing a full token x state transition table.
//
// The heavy lifting is layered into sibling packages — automaton compiles
// a regex into a deterministic rune-range DFA, vocab models a decoded token
// vocabulary, walk threads a decoded string through an automaton one rune
// at a time, and index runs the parallel BFS that builds and publishes the
// per-state token maps a LazyIndex serves. This package is the thin
// external surface wiring those pieces together, plus process-wide
// memoization via fsmcache.
package fsmindex

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/coregx/fsmindex/automaton"
	"github.com/coregx/fsmindex/index"
	"github.com/coregx/fsmindex/vocab"
)

var (
	workerOverrideOnce sync.Once
	workerOverride     int
)

// workerThreadsOverride reads WORKER_THREADS once per process. A value of
// zero means "no override" — DefaultConfig's GOMAXPROCS fallback stands.
func workerThreadsOverride() int {
	workerOverrideOnce.Do(func() {
		raw := os.Getenv("WORKER_THREADS")
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return
		}
		workerOverride = n
	})
	return workerOverride
}

// Build compiles regex and starts an index build over v using
// DefaultConfig, returning a handle immediately — the build itself runs in
// the background and individual reads block only on the states they need.
func Build(ctx context.Context, regex string, v *vocab.Vocabulary) (*index.LazyIndex, error) {
	return BuildWithConfig(ctx, regex, v, DefaultConfig())
}

// BuildWithConfig is Build with explicit resource limits.
func BuildWithConfig(ctx context.Context, regex string, v *vocab.Vocabulary, cfg Config) (*index.LazyIndex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := automaton.CompileWithLimit(regex, cfg.MaxAutomatonStates)
	if err != nil {
		return nil, err
	}

	workers := cfg.workers()
	if override := workerThreadsOverride(); override > 0 {
		workers = override
	}

	b := &index.Builder{Automaton: a, Vocab: v, Workers: workers}
	return b.Start(ctx), nil
}
