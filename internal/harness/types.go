package harness

import "github.com/roach88/dexmatch/internal/engine"

// TraceEvent is one match in a scenario trace.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Pattern string   `json:"pattern"`
	Method  string   `json:"method"`
	Start   int      `json:"start"`
	Insns   []string `json:"insns"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// RunID is the run the scan was recorded under.
	RunID string `json:"run_id"`

	// Methods is the number of method bodies scanned.
	Methods int `json:"methods"`

	// Trace lists the matches in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddMatchTrace appends a match to the trace.
func (r *Result) AddMatchTrace(m engine.Match) {
	insns := make([]string, len(m.Insns))
	for i, insn := range m.Insns {
		insns[i] = insn.String()
	}
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     m.Seq,
		Pattern: m.Pattern,
		Method:  m.Method.FullName(),
		Start:   m.Start,
		Insns:   insns,
	})
}
