package automaton

import (
	"fmt"
	"hash/fnv"
	"regexp/syntax"
	"sort"

	"github.com/coregx/fsmindex/internal/runeclass"
	"github.com/coregx/fsmindex/internal/sparse"
)

// DefaultMaxStates bounds subset construction so a pathological pattern
// (e.g. deeply nested bounded repeats) fails fast with ErrTooComplex
// instead of exhausting memory — the rune-level analogue of
// meta.Config.MaxDFAStates / nfa.CompilerConfig.MaxRecursionDepth guards.
const DefaultMaxStates = 10000

// DefaultMaxRecursionDepth bounds AST recursion depth during NFA
// construction, mirroring nfa.CompilerConfig.MaxRecursionDepth.
const DefaultMaxRecursionDepth = 100

// Compile parses pattern and compiles it into a character-level DFA
// descriptor using DefaultMaxStates as the subset-construction budget.
//
// The resulting automaton matches pattern anchored at both ends: a
// generated string is accepted only once it forms a complete match, which
// is the semantics regex-constrained decoding needs — the automaton must
// tell the decoder, at every prefix, whether continuing is still legal.
// `^`/`\A` and `$`/`\z` assertions are accepted as no-ops
// under this always-anchored model; `\b`/`\B` word-boundary assertions
// have no representation in a context-free character DFA and are
// rejected with ErrUnsupportedConstruct.
func Compile(pattern string) (*Automaton, error) {
	return CompileWithLimit(pattern, DefaultMaxStates)
}

// CompileWithLimit is Compile with an explicit subset-construction state
// budget.
func CompileWithLimit(pattern string, maxStates int) (*Automaton, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}

	c := &compiler{builder: newNFABuilder(), maxDepth: DefaultMaxRecursionDepth}
	start, end, err := c.compile(re)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	match := c.builder.addMatch()
	c.builder.patch(end, match)

	a, err := subsetConstruct(c.builder, start, maxStates)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return a, nil
}

// compiler recursively lowers a *syntax.Regexp AST into the nfaBuilder,
// in the "return (start, end) fragment, patch end later" style
// (nfa/compile.go's Compiler.compileRegexp), stripped of byte semantics,
// captures, and priority-preserving quantifier splits — subset
// construction only needs the language, not leftmost-first priority.
type compiler struct {
	builder *nfaBuilder
	depth   int
	maxDepth int
}

func (c *compiler) compile(re *syntax.Regexp) (start, end nfaStateID, err error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.maxDepth {
		return nfaInvalid, nfaInvalid, ErrTooComplex
	}

	switch re.Op {
	case syntax.OpLiteral:
		return c.compileLiteral(re)
	case syntax.OpCharClass:
		return c.compileCharClass(re.Rune)
	case syntax.OpAnyChar:
		return c.compileRuneRange(0, runeclass.MaxRune)
	case syntax.OpAnyCharNotNL:
		return c.compileNotNL()
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileStar(re.Sub[0])
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0])
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0])
	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max)
	case syntax.OpCapture:
		return c.compile(re.Sub[0])
	case syntax.OpBeginText, syntax.OpEndText, syntax.OpBeginLine, syntax.OpEndLine:
		id := c.builder.addEpsilon(nfaInvalid)
		return id, id, nil
	case syntax.OpEmptyMatch:
		id := c.builder.addEpsilon(nfaInvalid)
		return id, id, nil
	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return nfaInvalid, nfaInvalid, ErrUnsupportedConstruct
	case syntax.OpNoMatch:
		// A state with no outgoing transitions and that is never Match.
		id := c.builder.addRuneRange(1, 0, nfaInvalid) // empty range: lo > hi, matches nothing
		return id, id, nil
	default:
		return nfaInvalid, nfaInvalid, fmt.Errorf("%w: op %v", ErrUnsupportedConstruct, re.Op)
	}
}

func (c *compiler) compileRuneRange(lo, hi rune) (start, end nfaStateID, err error) {
	id := c.builder.addRuneRange(lo, hi, nfaInvalid)
	return id, id, nil
}

func (c *compiler) compileNotNL() (start, end nfaStateID, err error) {
	// Any rune except '\n': split the full range around it.
	starts := make([]nfaStateID, 0, 2)
	ends := make([]nfaStateID, 0, 2)
	if s, e, err := c.compileRuneRange(0, '\n'-1); err == nil {
		starts = append(starts, s)
		ends = append(ends, e)
	}
	if s, e, err := c.compileRuneRange('\n'+1, runeclass.MaxRune); err == nil {
		starts = append(starts, s)
		ends = append(ends, e)
	}
	return c.join(starts, ends)
}

func (c *compiler) compileLiteral(re *syntax.Regexp) (start, end nfaStateID, err error) {
	if len(re.Rune) == 0 {
		id := c.builder.addEpsilon(nfaInvalid)
		return id, id, nil
	}
	var first, prev nfaStateID = nfaInvalid, nfaInvalid
	for _, r := range re.Rune {
		id := c.builder.addRuneRange(r, r, nfaInvalid)
		if first == nfaInvalid {
			first = id
		} else {
			c.builder.patch(prev, id)
		}
		prev = id
	}
	return first, prev, nil
}

// compileCharClass compiles a []rune of [lo,hi,lo,hi,...] pairs, as
// regexp/syntax represents character classes.
func (c *compiler) compileCharClass(ranges []rune) (start, end nfaStateID, err error) {
	if len(ranges) == 0 {
		return c.compile(&syntax.Regexp{Op: syntax.OpNoMatch})
	}
	var starts, ends []nfaStateID
	for i := 0; i+1 < len(ranges); i += 2 {
		s, e, _ := c.compileRuneRange(ranges[i], ranges[i+1])
		starts = append(starts, s)
		ends = append(ends, e)
	}
	return c.join(starts, ends)
}

// join combines parallel fragments into a single alternation, sharing the
// compileAlternate machinery below.
func (c *compiler) join(starts, ends []nfaStateID) (start, end nfaStateID, err error) {
	if len(starts) == 1 {
		return starts[0], ends[0], nil
	}
	split := c.splitChain(starts)
	joinID := c.builder.addEpsilon(nfaInvalid)
	for _, e := range ends {
		c.builder.patch(e, joinID)
	}
	return split, joinID, nil
}

func (c *compiler) splitChain(targets []nfaStateID) nfaStateID {
	if len(targets) == 1 {
		return targets[0]
	}
	right := c.splitChain(targets[1:])
	return c.builder.addSplit(targets[0], right)
}

func (c *compiler) compileConcat(subs []*syntax.Regexp) (start, end nfaStateID, err error) {
	if len(subs) == 0 {
		return c.compile(&syntax.Regexp{Op: syntax.OpEmptyMatch})
	}
	start, end, err = c.compile(subs[0])
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	for _, sub := range subs[1:] {
		s, e, err := c.compile(sub)
		if err != nil {
			return nfaInvalid, nfaInvalid, err
		}
		c.builder.patch(end, s)
		end = e
	}
	return start, end, nil
}

func (c *compiler) compileAlternate(subs []*syntax.Regexp) (start, end nfaStateID, err error) {
	if len(subs) == 0 {
		return c.compile(&syntax.Regexp{Op: syntax.OpNoMatch})
	}
	starts := make([]nfaStateID, 0, len(subs))
	ends := make([]nfaStateID, 0, len(subs))
	for _, sub := range subs {
		s, e, err := c.compile(sub)
		if err != nil {
			return nfaInvalid, nfaInvalid, err
		}
		starts = append(starts, s)
		ends = append(ends, e)
	}
	return c.join(starts, ends)
}

func (c *compiler) compileStar(sub *syntax.Regexp) (start, end nfaStateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	end = c.builder.addEpsilon(nfaInvalid)
	split := c.builder.addSplit(subStart, end)
	c.builder.patch(subEnd, split)
	return split, end, nil
}

func (c *compiler) compilePlus(sub *syntax.Regexp) (start, end nfaStateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	end = c.builder.addEpsilon(nfaInvalid)
	split := c.builder.addSplit(subStart, end)
	c.builder.patch(subEnd, split)
	return subStart, end, nil
}

func (c *compiler) compileQuest(sub *syntax.Regexp) (start, end nfaStateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	end = c.builder.addEpsilon(nfaInvalid)
	split := c.builder.addSplit(subStart, end)
	c.builder.patch(subEnd, end)
	return split, end, nil
}

// maxRepeatCount bounds a single {m,n} expansion. syntax.Parse already
// rejects counts above 1000 (a pattern like a{1,100000} fails there with an
// invalid-repeat-size error), so this check repeats the same bound;
// ErrTooComplex is the same sentinel subset construction returns when the
// *compiled* automaton grows past its budget.
const maxRepeatCount = 1000

func (c *compiler) compileRepeat(sub *syntax.Regexp, minCount, maxCount int) (start, end nfaStateID, err error) {
	if minCount > maxRepeatCount || maxCount > maxRepeatCount {
		return nfaInvalid, nfaInvalid, ErrTooComplex
	}
	if maxCount == -1 {
		// a{m,} = a^m a*
		return c.compileRepeatAtLeast(sub, minCount)
	}
	if minCount == 0 && maxCount == 0 {
		id := c.builder.addEpsilon(nfaInvalid)
		return id, id, nil
	}

	if minCount == 0 {
		return c.compileOptionalChain(sub, maxCount)
	}
	mandStart, mandEnd, err := c.compileChain(sub, minCount)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	if minCount == maxCount {
		return mandStart, mandEnd, nil
	}
	optStart, optEnd, err := c.compileOptionalChain(sub, maxCount-minCount)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	c.builder.patch(mandEnd, optStart)
	return mandStart, optEnd, nil
}

// compileChain concatenates count independently-compiled copies of sub. A
// zero count compiles to a single pass-through epsilon.
func (c *compiler) compileChain(sub *syntax.Regexp, count int) (start, end nfaStateID, err error) {
	if count == 0 {
		id := c.builder.addEpsilon(nfaInvalid)
		return id, id, nil
	}
	start, end, err = c.compile(sub)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	for i := 1; i < count; i++ {
		s, e, err := c.compile(sub)
		if err != nil {
			return nfaInvalid, nfaInvalid, err
		}
		c.builder.patch(end, s)
		end = e
	}
	return start, end, nil
}

// compileOptionalChain compiles "between 0 and count copies of sub",
// recursively: the first copy is optional, and skipping it also skips
// every copy after it. Each level is its own Quest-shaped split, so the
// whole thing accepts exactly 0..count repetitions with no priority
// preserved (subset construction only needs the language).
func (c *compiler) compileOptionalChain(sub *syntax.Regexp, count int) (start, end nfaStateID, err error) {
	if count == 0 {
		id := c.builder.addEpsilon(nfaInvalid)
		return id, id, nil
	}
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	restStart, restEnd, err := c.compileOptionalChain(sub, count-1)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	c.builder.patch(subEnd, restStart)

	end = c.builder.addEpsilon(nfaInvalid)
	c.builder.patch(restEnd, end)
	split := c.builder.addSplit(subStart, end)
	return split, end, nil
}

func (c *compiler) compileRepeatAtLeast(sub *syntax.Regexp, minCount int) (start, end nfaStateID, err error) {
	if minCount == 0 {
		return c.compileStar(sub)
	}
	if minCount > maxRepeatCount {
		return nfaInvalid, nfaInvalid, ErrTooComplex
	}
	mandStart, mandEnd, err := c.compileChain(sub, minCount)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	starStart, starEnd, err := c.compileStar(sub)
	if err != nil {
		return nfaInvalid, nfaInvalid, err
	}
	c.builder.patch(mandEnd, starStart)
	return mandStart, starEnd, nil
}

// --- Subset construction -------------------------------------------------

// config is a canonical, sorted set of nfaStateIDs representing one DFA
// state during subset construction.
type config struct {
	ids      []nfaStateID
	key      uint64
	assigned StateID
}

func computeConfigKey(ids []nfaStateID) uint64 {
	// Sorted-then-FNV1a, exactly the recipe in dfa/lazy/state.go's
	// ComputeStateKey, generalized from nfa.StateID to this package's
	// nfaStateID.
	h := fnv.New64a()
	for _, id := range ids {
		_, _ = h.Write([]byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)})
	}
	return h.Sum64()
}

func epsilonClosure(states []nfaState, seed []nfaStateID) []nfaStateID {
	seen := sparse.NewSparseSet(uint32(len(states)))
	stack := append([]nfaStateID(nil), seed...)
	var out []nfaStateID
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Contains(uint32(id)) {
			continue
		}
		seen.Insert(uint32(id))
		out = append(out, id)
		switch states[id].kind {
		case nfaEpsilon:
			if states[id].next != nfaInvalid {
				stack = append(stack, states[id].next)
			}
		case nfaSplit:
			stack = append(stack, states[id].left, states[id].right)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func containsMatch(states []nfaState, ids []nfaStateID) bool {
	for _, id := range ids {
		if states[id].kind == nfaMatch {
			return true
		}
	}
	return false
}

// subsetConstruct runs a queue-driven subset-construction loop
// (nfa/composite_dfa.go's buildDFASubsetConstruction), generalized from "at
// most 8 composite char-class parts" to an arbitrary Thompson NFA, and
// keyed the way dfa/lazy/state.go keys DFA states: sorted NFA-state-set +
// FNV-1a hash, with an exact-match fallback on hash collision.
func subsetConstruct(b *nfaBuilder, nfaStart nfaStateID, maxStates int) (*Automaton, error) {
	boundaries := b.boundaries.Classes()

	byKey := make(map[uint64][]config) // hash -> candidate configs (collision bucket)
	var configs []config

	internConfig := func(ids []nfaStateID) (id StateID, fresh bool) {
		key := computeConfigKey(ids)
		for _, cand := range byKey[key] {
			if equalIDs(cand.ids, ids) {
				return cand.assigned, false
			}
		}
		sid := StateID(len(configs))
		c := config{ids: ids, key: key, assigned: sid}
		configs = append(configs, c)
		byKey[key] = append(byKey[key], c)
		return sid, true
	}

	startClosure := epsilonClosure(b.states, []nfaStateID{nfaStart})
	startID, _ := internConfig(startClosure)
	if startID != 0 {
		panic("automaton: initial state must be assigned id 0")
	}

	a := &Automaton{
		Initial:      0,
		Finals:       make(map[StateID]struct{}),
		Transitions:  make(map[Edge]StateID),
		classes:      boundaries,
		AnythingElse: boundaries.AnythingElse(),
	}

	frontier := []StateID{0}
	for len(frontier) > 0 {
		if len(configs) > maxStates {
			return nil, ErrTooComplex
		}
		var next []StateID
		for _, sid := range frontier {
			cfg := configs[sid]
			if containsMatch(b.states, cfg.ids) {
				a.Finals[sid] = struct{}{}
			}
			numClasses := boundaries.Len()
			for class := 0; class < numClasses; class++ {
				rep := boundaries.Representative(SymbolID(class))
				var targets []nfaStateID
				for _, id := range cfg.ids {
					s := b.states[id]
					if s.kind == nfaRuneRange && s.lo <= rep && rep <= s.hi && s.next != nfaInvalid {
						targets = append(targets, s.next)
					}
				}
				if len(targets) == 0 {
					continue
				}
				closure := epsilonClosure(b.states, targets)
				toID, fresh := internConfig(closure)
				a.Transitions[Edge{From: sid, Symbol: SymbolID(class)}] = toID
				if fresh {
					next = append(next, toID)
				}
			}
		}
		frontier = next
	}

	return a, nil
}

func equalIDs(a, b []nfaStateID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
