package match

// Matcher is a pure boolean test over entities of kind T.
type Matcher[T any] interface {
	Matches(T) bool
}

// Func adapts an ordinary function to a Matcher.
type Func[T any] func(T) bool

// Matches calls f(e).
func (f Func[T]) Matches(e T) bool { return f(e) }

// New wraps fn as a Matcher.
func New[T any](fn func(T) bool) Matcher[T] {
	return Func[T](fn)
}

type notMatcher[T any] struct{ p Matcher[T] }

func (m notMatcher[T]) Matches(e T) bool { return !m.p.Matches(e) }

// Not negates p.
func Not[T any](p Matcher[T]) Matcher[T] {
	return notMatcher[T]{p: p}
}

type andMatcher[T any] struct{ p, q Matcher[T] }

func (m andMatcher[T]) Matches(e T) bool { return m.p.Matches(e) && m.q.Matches(e) }

// And matches when both p and q match. q is not evaluated if p fails.
func And[T any](p, q Matcher[T]) Matcher[T] {
	return andMatcher[T]{p: p, q: q}
}

type orMatcher[T any] struct{ p, q Matcher[T] }

func (m orMatcher[T]) Matches(e T) bool { return m.p.Matches(e) || m.q.Matches(e) }

// Or matches when either p or q matches. q is not evaluated if p matches.
func Or[T any](p, q Matcher[T]) Matcher[T] {
	return orMatcher[T]{p: p, q: q}
}

type xorMatcher[T any] struct{ p, q Matcher[T] }

func (m xorMatcher[T]) Matches(e T) bool { return m.p.Matches(e) != m.q.Matches(e) }

// Xor matches when exactly one of p and q matches. Both are evaluated.
func Xor[T any](p, q Matcher[T]) Matcher[T] {
	return xorMatcher[T]{p: p, q: q}
}

// All folds ps with And. An empty list matches everything.
func All[T any](ps ...Matcher[T]) Matcher[T] {
	if len(ps) == 0 {
		return Any[T]()
	}
	m := ps[0]
	for _, p := range ps[1:] {
		m = And(m, p)
	}
	return m
}

// OneOf folds ps with Or. An empty list matches nothing.
func OneOf[T any](ps ...Matcher[T]) Matcher[T] {
	if len(ps) == 0 {
		return Not(Any[T]())
	}
	m := ps[0]
	for _, p := range ps[1:] {
		m = Or(m, p)
	}
	return m
}

type anyMatcher[T any] struct{}

func (anyMatcher[T]) Matches(T) bool { return true }

// Any matches every entity.
func Any[T any]() Matcher[T] {
	return anyMatcher[T]{}
}

// PtrEq matches only the entity identical to expected.
func PtrEq[T comparable](expected T) Matcher[T] {
	return Func[T](func(e T) bool { return e == expected })
}
