// Package index implements the parallel BFS index builder (component D)
// and the lazy, concurrently-readable handle it publishes into
// (component E).
package index

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/coregx/fsmindex/automaton"
	"github.com/coregx/fsmindex/vocab"
	"github.com/coregx/fsmindex/walk"
)

// Builder drives the parallel BFS that populates a LazyIndex.
type Builder struct {
	Automaton *automaton.Automaton
	Vocab     *vocab.Vocabulary
	// Workers bounds the worker pool; zero means runtime.GOMAXPROCS(0),
	// mirroring WORKER_THREADS' default in the root package's Config.
	Workers int
}

// Start spawns the build in the background and returns the handle
// immediately — reads against already-finished states never wait on the
// build, though each read briefly takes the shared mutex (they are not
// lock-free); reads against pending states block until that state is
// published.
func (b *Builder) Start(ctx context.Context) *LazyIndex {
	state := newSharedState(b.Automaton)
	go b.run(ctx, state)
	return &LazyIndex{
		state:     state,
		automaton: b.Automaton,
		eos:       b.Vocab.EOSTokenID(),
	}
}

func (b *Builder) workers() int {
	if b.Workers > 0 {
		return b.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// run does a BFS layer by layer, one worker goroutine per frontier state
// (bounded by the pool size), publishing each state atomically as soon as
// its token map is complete and discovering the next layer from the union
// of this layer's walk targets. Once the handle is cancelled, no further
// state is started.
func (b *Builder) run(ctx context.Context, state *sharedState) {
	seen := map[automaton.StateID]struct{}{b.Automaton.Initial: {}}
	frontier := []automaton.StateID{b.Automaton.Initial}

	cancelled := func() bool {
		state.mu.Lock()
		defer state.mu.Unlock()
		return state.cancelled
	}

	for len(frontier) > 0 {
		if cancelled() {
			return
		}
		if err := ctx.Err(); err != nil {
			state.cancel(err)
			return
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.workers())

		type result struct {
			tokens     map[vocab.TokenID]StateID
			discovered []automaton.StateID
		}
		results := make([]result, len(frontier))

		for i, q := range frontier {
			i, q := i, q
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if cancelled() {
					return ErrCancelled
				}
				tokens, discovered := b.computeState(q)
				state.publish(q, tokens)
				results[i] = result{tokens: tokens, discovered: discovered}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			state.cancel(err)
			return
		}

		var next []automaton.StateID
		for i := range frontier {
			for _, d := range results[i].discovered {
				if _, ok := seen[d]; !ok {
					seen[d] = struct{}{}
					next = append(next, d)
				}
			}
		}
		frontier = next
	}

	state.complete()
}

// computeState runs the walker from q across every decoded-string bucket
// in the vocabulary, building q's token_id -> next_state map. Buckets,
// not raw token ids, are iterated — every id in a bucket shares the same
// walk result, so the per-state walk cost is O(distinct decoded strings),
// not O(|vocab|).
func (b *Builder) computeState(q automaton.StateID) (map[vocab.TokenID]StateID, []automaton.StateID) {
	tokens := make(map[vocab.TokenID]StateID)
	var discovered []automaton.StateID

	for _, bucket := range b.Vocab.IterDecoded() {
		res := walk.Walk(b.Automaton, q, bucket.Decoded)
		if !res.Accepted {
			continue
		}
		next := fromAutomatonState(res.State)
		for _, id := range bucket.IDs {
			tokens[id] = next
		}
		discovered = append(discovered, res.State)
	}

	if b.Automaton.IsFinal(q) {
		tokens[b.Vocab.EOSTokenID()] = Reject
	}

	return tokens, discovered
}
