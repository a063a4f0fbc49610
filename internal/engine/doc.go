// Package engine scans a program's method bodies with instruction
// patterns.
//
// A scan visits every method that has code, in Registry.Classes() order
// with direct methods before virtual methods, and runs every pattern over
// each body. Method bodies are matched in parallel by a bounded pool of
// workers; their results are then reassembled in visiting order and only
// then stamped with seqs from the logical Clock. The worker count never
// changes the report.
//
// Ordering within a scan:
//  1. methods in visiting order
//  2. patterns in the order given to Scan
//  3. start index, ascending
//
// A scan optionally persists its run and matches through a store.Store,
// in one transaction after matching completes.
package engine
