// Package store provides SQLite-backed storage for scan results and
// method profiles.
//
// Three tables are kept:
//   - scan_runs: one row per Engine.Scan, keyed by run ID
//   - scan_matches: one row per match, keyed by (run_id, seq)
//   - method_profiles: one row per profiled method, keyed by method name
//
// Match rows are ordered by seq, the engine's logical clock, so reading a
// run back yields the order the engine reported it in. Writes are
// idempotent: re-writing a run or match is a no-op and re-writing a
// profile replaces it.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
