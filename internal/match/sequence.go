package match

// Pattern is an ordered list of positional matchers.
type Pattern[T any] []Matcher[T]

func (p Pattern[T]) matchesAt(items []T, start int) bool {
	for k, m := range p {
		if !m.Matches(items[start+k]) {
			return false
		}
	}
	return true
}

// MatchIndices returns every start index i such that pattern[k] matches
// items[i+k] for all k. Overlapping windows are all reported. An empty
// pattern matches nowhere.
func MatchIndices[T any](items []T, pattern Pattern[T]) []int {
	n := len(pattern)
	if n == 0 || n > len(items) {
		return nil
	}
	var out []int
	for i := 0; i+n <= len(items); i++ {
		if pattern.matchesAt(items, i) {
			out = append(out, i)
		}
	}
	return out
}

// Window returns the len(p) elements of items starting at start, as a
// sub-slice rather than a copy. Its capacity is capped so appending to it
// cannot clobber items. start must come from MatchIndices.
func (p Pattern[T]) Window(items []T, start int) []T {
	end := start + len(p)
	return items[start:end:end]
}

// FindMatches appends to out every window of items that pattern matches,
// in ascending start order.
func FindMatches[T any](out [][]T, items []T, pattern Pattern[T]) [][]T {
	for _, i := range MatchIndices(items, pattern) {
		out = append(out, pattern.Window(items, i))
	}
	return out
}

// FindInsnIndices returns the index of every element of items accepted
// by p, in ascending order.
func FindInsnIndices[T any](items []T, p Matcher[T]) []int {
	var out []int
	for i, it := range items {
		if p.Matches(it) {
			out = append(out, i)
		}
	}
	return out
}

// FindInsnMatch appends every element of items accepted by p, in order.
func FindInsnMatch[T any](out []T, items []T, p Matcher[T]) []T {
	for _, i := range FindInsnIndices(items, p) {
		out = append(out, items[i])
	}
	return out
}
