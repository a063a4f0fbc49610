// Package querymatch lowers queryir patterns to executable matchers.
//
// Descriptors in a pattern are resolved against one ir.Registry at compile
// time. A descriptor the registry has never seen cannot match anything, so
// the filter that names it compiles to a matcher that always fails.
package querymatch
