// Package harness runs conformance scenarios against compiled patterns.
//
// A scenario names a set of CUE spec files holding a program and its
// patterns, scans the program, and asserts on the matches found.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: alloc_then_init
//	description: "allocations are followed by their constructor"
//	specs:
//	  - specs/program.cue
//	  - specs/patterns.cue
//	run_id: run-alloc
//	patterns: [alloc]          # optional; defaults to every pattern
//	assertions:
//	  - type: match_count
//	    pattern: alloc
//	    count: 2
//	  - type: match_at
//	    pattern: alloc
//	    method: "Lcom/Foo;.make:()Lcom/Foo;"
//	    start: 0
//	  - type: no_match
//	    pattern: alloc
//	    method: "Lcom/Foo;.<init>:()V"
//	  - type: stored_count
//	    pattern: alloc
//	    count: 2
//
// # Assertion Types
//
//   - match_count: the pattern matched exactly count windows
//   - match_at: the pattern matched the method at the given start index
//   - no_match: the pattern never matched (in method, when given)
//   - stored_count: the store holds count matches of the pattern for the run
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run ID, a fresh logical clock, a
// single worker and an in-memory SQLite store, so the trace is identical
// across runs and can be compared with a golden file.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/alloc.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
