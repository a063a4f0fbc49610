package ir

import (
	"fmt"
	"strings"
)

// AccessFlags is the Dex access-flag bit vector carried by classes, methods
// and fields.
type AccessFlags uint32

// Dex access flags. Some bits are shared between classes, methods and fields
// and mean different things depending on the entity (e.g. AccVolatile and
// AccBridge).
const (
	AccPublic       AccessFlags = 0x1
	AccPrivate      AccessFlags = 0x2
	AccProtected    AccessFlags = 0x4
	AccStatic       AccessFlags = 0x8
	AccFinal        AccessFlags = 0x10
	AccSynchronized AccessFlags = 0x20
	AccVolatile     AccessFlags = 0x40
	AccBridge       AccessFlags = 0x40
	AccTransient    AccessFlags = 0x80
	AccVarargs      AccessFlags = 0x80
	AccNative       AccessFlags = 0x100
	AccInterface    AccessFlags = 0x200
	AccAbstract     AccessFlags = 0x400
	AccStrict       AccessFlags = 0x800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccConstructor  AccessFlags = 0x10000
)

// accessNames lists flag names in bit order for String and ParseAccessFlag.
// Aliased bits (bridge/varargs) are accepted by ParseAccessFlag but printed
// under their field-level name.
var accessNames = []struct {
	name string
	flag AccessFlags
}{
	{"public", AccPublic},
	{"private", AccPrivate},
	{"protected", AccProtected},
	{"static", AccStatic},
	{"final", AccFinal},
	{"synchronized", AccSynchronized},
	{"volatile", AccVolatile},
	{"transient", AccTransient},
	{"native", AccNative},
	{"interface", AccInterface},
	{"abstract", AccAbstract},
	{"strict", AccStrict},
	{"synthetic", AccSynthetic},
	{"annotation", AccAnnotation},
	{"enum", AccEnum},
	{"constructor", AccConstructor},
}

var accessAliases = map[string]AccessFlags{
	"bridge":  AccBridge,
	"varargs": AccVarargs,
}

// Has reports whether every bit of flag is set.
func (a AccessFlags) Has(flag AccessFlags) bool {
	return a&flag == flag
}

// String renders the flags as space-separated names, e.g. "public final".
func (a AccessFlags) String() string {
	var parts []string
	rest := a
	for _, n := range accessNames {
		if a&n.flag != 0 {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, " ")
}

// ParseAccessFlag converts a flag name ("public", "final", ...) to its bit.
func ParseAccessFlag(name string) (AccessFlags, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, n := range accessNames {
		if n.name == lower {
			return n.flag, nil
		}
	}
	if f, ok := accessAliases[lower]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown access flag %q", name)
}

// ParseAccessFlags combines a list of flag names.
func ParseAccessFlags(names []string) (AccessFlags, error) {
	var flags AccessFlags
	for _, name := range names {
		f, err := ParseAccessFlag(name)
		if err != nil {
			return 0, err
		}
		flags |= f
	}
	return flags, nil
}
