// Package match provides composable predicates over IR entities and a
// sliding-window matcher over instruction sequences.
//
// A Matcher[T] is a pure test over one entity kind. Combinators (Not, And,
// Or, Xor) and projections (MemberOf, AsClass, OpcodeMethod, ...) build new
// matchers from existing ones; Go's type parameters keep a class matcher
// from being used where a method matcher is expected.
//
// Matchers never fail. Anything that cannot be evaluated (an unresolved
// reference, a missing annotation set, a type with no class) is a
// non-match. Matchers hold no IR data beyond constant configuration, so a
// built matcher may be shared by any number of goroutines as long as the
// IR is not mutated during the query.
package match
