package harness

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/dexmatch/internal/compiler"
	"github.com/roach88/dexmatch/internal/engine"
	"github.com/roach88/dexmatch/internal/queryir"
	"github.com/roach88/dexmatch/internal/store"
	"github.com/roach88/dexmatch/internal/testutil"
)

// Harness is the scenario execution engine.
// It scans with a fixed run ID, one worker and a fresh store.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *zap.Logger
}

// Run executes a test scenario and returns the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load and compile the program and patterns from scenario.Specs
// 2. Select the scenario's patterns
// 3. Scan with a fixed run ID, recording matches in the store
// 4. Evaluate assertions against the trace and the store
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	loaded, errs := compiler.LoadFiles(scenario.Specs, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load specs: %w", errors.Join(errs...))
	}

	patterns, err := loaded.Select(scenario.Patterns)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := zap.NewNop()
	h := &Harness{
		store: st,
		engine: engine.New(loaded.Registry,
			engine.WithWorkers(1),
			engine.WithStore(st),
			engine.WithLogger(logger),
			engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		),
		logger: logger,
	}

	result, err := h.scan(ctx, patterns)
	if err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
		RunID: result.RunID,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) scan(ctx context.Context, patterns []queryir.Pattern) (*Result, error) {
	compiled, err := h.engine.Compile(patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}
	report, err := h.engine.Scan(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}

	result := NewResult()
	result.RunID = report.RunID
	result.Methods = report.Methods
	for _, m := range report.Matches {
		result.AddMatchTrace(m)
	}
	return result, nil
}
