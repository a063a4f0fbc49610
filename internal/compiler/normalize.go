package compiler

import (
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"golang.org/x/text/unicode/norm"
)

// nfc normalizes names and descriptors so that exact-name matching does not
// depend on how an editor composed accented characters.
func nfc(s string) string {
	return norm.NFC.String(s)
}

// labelOf returns the unquoted label of a struct field.
func labelOf(sel cue.Selector) string {
	s := sel.String()
	if unq, err := strconv.Unquote(s); err == nil {
		return nfc(unq)
	}
	return nfc(strings.Trim(s, `"`))
}

func lookup(v cue.Value, path string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(path)))
}

// optString reads an optional string field.
func optString(v cue.Value, name string) (string, bool, error) {
	f := lookup(v, name)
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", true, formatCUEError(err)
	}
	return nfc(s), true, nil
}

// optBool reads an optional bool field.
func optBool(v cue.Value, name string, def bool) (bool, error) {
	f := lookup(v, name)
	if !f.Exists() {
		return def, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// stringList reads an optional list of strings.
func stringList(v cue.Value, name string) ([]string, error) {
	f := lookup(v, name)
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, nfc(s))
	}
	return out, nil
}
