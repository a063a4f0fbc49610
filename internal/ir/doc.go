// Package ir provides the bytecode intermediate representation consumed by
// the matcher.
//
// This package contains the entity graph only: types, classes, members,
// annotations and instructions, plus the registry that interns and resolves
// them. All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Types, strings and member references are interned per Registry, so
//     pointer identity is entity identity
//   - References (MethodRef, FieldRef) resolve to definitions through AsDef,
//     which returns nil when the reference is external or unknown
//   - A Registry is built once and then read; it is not safe for concurrent
//     mutation, but any number of goroutines may read a finished Registry
package ir
