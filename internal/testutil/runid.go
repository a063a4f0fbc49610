package testutil

// FixedRunIDGenerator returns the same run ID every time.
//
// Harness scenarios run one scan per scenario and name the ID in YAML,
// so golden traces stay byte-identical across runs:
//
//	run_id: "test-run-00000000-0000-0000-0000-000000000001"
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id. If id is empty,
// Generate returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
