// Package queryir provides a declarative intermediate representation for
// instruction patterns.
//
// A Pattern is an ordered list of step predicates; step k must accept
// instruction i+k for the window starting at i to match. Patterns are
// plain data: they are produced by the CUE compiler, checked by Validate
// and lowered to executable matchers by package querymatch.
//
//	[CUE pattern] → [queryir.Pattern] → [match.Pattern[*ir.Instruction]]
//
// SEALED INTERFACES:
//
// Predicate is sealed with a marker method. Only pointer types in this
// package implement it, so lowering code can switch exhaustively:
//
//	switch p := pred.(type) {
//	case *Opcode:
//	    // exact opcode
//	case *Invoke:
//	    // invoke family, optional method filter
//	...
//	}
//
// Operand filters (TypeFilter, MemberFilter) are leaves. A nil filter
// means "any operand"; a non-nil filter with all fields zero also matches
// any operand. Set fields are combined with AND.
package queryir
