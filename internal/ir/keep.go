package ir

// ReferenceState is the keep-rule state attached to a definition.
type ReferenceState struct {
	Keep             bool
	AllowShrinking   bool
	AllowObfuscation bool
}

// Keepable is a definition that carries keep-rule state.
type Keepable interface {
	IsExternal() bool
	ReferenceState() ReferenceState
}

// CanDelete reports whether the optimizer may remove d.
func CanDelete(d Keepable) bool {
	rs := d.ReferenceState()
	return !d.IsExternal() && (!rs.Keep || rs.AllowShrinking)
}

// CanRename reports whether the optimizer may rename d.
func CanRename(d Keepable) bool {
	rs := d.ReferenceState()
	return !d.IsExternal() && (!rs.Keep || rs.AllowObfuscation)
}

// HasKeep reports whether any keep rule applies to d.
func HasKeep(d Keepable) bool {
	return d.ReferenceState().Keep
}
