package match

import "github.com/roach88/dexmatch/internal/ir"

// CanDelete matches definitions the optimizer may remove.
func CanDelete[T ir.Keepable]() Matcher[T] {
	return Func[T](func(e T) bool { return ir.CanDelete(e) })
}

// CanRename matches definitions the optimizer may rename.
func CanRename[T ir.Keepable]() Matcher[T] {
	return Func[T](func(e T) bool { return ir.CanRename(e) })
}

// HasKeep matches definitions covered by a keep rule.
func HasKeep[T ir.Keepable]() Matcher[T] {
	return Func[T](func(e T) bool { return ir.HasKeep(e) })
}
