package index

import "github.com/coregx/fsmindex/vocab"

// InstructionKind distinguishes the two instruction shapes a LazyIndex
// read can return.
type InstructionKind uint8

const (
	// Generate means the caller may emit any token in Tokens.
	Generate InstructionKind = iota
	// Write means the caller must emit exactly the sequence in Tokens —
	// currently always a singleton containing the EOS token, returned
	// when it is the only valid continuation.
	Write
)

// Instruction is the result of LazyIndex.GetNextInstruction.
type Instruction struct {
	Kind   InstructionKind
	Tokens []vocab.TokenID
}
