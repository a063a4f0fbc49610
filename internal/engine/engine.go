package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/dexmatch/internal/ir"
	"github.com/roach88/dexmatch/internal/match"
	"github.com/roach88/dexmatch/internal/querymatch"
	"github.com/roach88/dexmatch/internal/queryir"
	"github.com/roach88/dexmatch/internal/store"
)

// NamedPattern is a compiled instruction pattern with the name it is
// reported under.
type NamedPattern struct {
	Name    string
	Pattern match.Pattern[*ir.Instruction]
}

// Match is one window of a method body accepted by a pattern.
type Match struct {
	Seq     int64
	Pattern string
	Method  *ir.Method
	Start   int
	Insns   []*ir.Instruction // sub-slice of the method body
}

// Hit is one instruction accepted by a single predicate.
type Hit struct {
	Seq    int64
	Method *ir.Method
	Index  int
	Insn   *ir.Instruction
}

// Report is the result of a scan.
type Report struct {
	RunID    string
	Patterns []string
	Methods  int
	Matches  []Match
}

// Count returns the number of matches reported for pattern.
func (r *Report) Count(pattern string) int {
	n := 0
	for _, m := range r.Matches {
		if m.Pattern == pattern {
			n++
		}
	}
	return n
}

// Engine scans the methods of a registry.
//
// Thread-safety model:
//   - Scan and FindInstructions may be called from any goroutine; runs
//     are serialized so seqs of one run are contiguous.
//   - The registry must not be mutated while a run is in progress.
type Engine struct {
	reg        *ir.Registry
	clock      *Clock
	runIDs     RunIDGenerator
	store      *store.Store
	logger     *zap.Logger
	workers    int
	maxMatches int

	mu sync.Mutex // serializes runs
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithWorkers bounds the number of method bodies matched concurrently.
// Values below one mean one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRunIDGenerator sets the run ID source. The default is UUIDv7Generator.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = gen
	}
}

// WithStore persists every run and its matches to s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock sets the clock seqs are drawn from.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithMaxMatches fails any run reporting more than n matches.
// Zero, the default, means no limit.
func WithMaxMatches(n int) Option {
	return func(e *Engine) {
		e.maxMatches = n
	}
}

// New creates an Engine over reg.
func New(reg *ir.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:    reg,
		clock:  NewClock(),
		runIDs: UUIDv7Generator{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Clock returns the engine's clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Workers returns the effective worker count.
func (e *Engine) Workers() int {
	return e.workers
}

// Compile lowers queryir patterns against the engine's registry,
// validating each first.
func (e *Engine) Compile(patterns []queryir.Pattern) ([]NamedPattern, error) {
	c := querymatch.NewCompiler(e.reg)
	out := make([]NamedPattern, 0, len(patterns))
	for _, p := range patterns {
		if res := queryir.Validate(p); !res.IsValid {
			return nil, &ScanError{
				Code:    ErrCodeInvalidPattern,
				Message: fmt.Sprintf("pattern %q: %s", p.Name, res.Warnings[0]),
			}
		}
		compiled, err := c.Compile(p)
		if err != nil {
			return nil, &ScanError{Code: ErrCodeInvalidPattern, Message: "compile", Err: err}
		}
		out = append(out, NamedPattern{Name: p.Name, Pattern: compiled})
	}
	return out, nil
}

// methodsWithCode lists the methods a run visits.
func (e *Engine) methodsWithCode() []*ir.Method {
	var out []*ir.Method
	for _, m := range e.reg.Methods() {
		if m.Code != nil {
			out = append(out, m)
		}
	}
	return out
}

// forEachMethod runs fn over methods on at most e.workers goroutines.
// fn writes only to its own index, so no locking is needed.
func (e *Engine) forEachMethod(ctx context.Context, methods []*ir.Method, fn func(i int, m *ir.Method)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, m := range methods {
		if gctx.Err() != nil {
			break
		}
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Scan runs every pattern over every method with code.
//
// Matches are reported per method in visiting order, then per pattern in
// argument order, then by ascending start index. Seqs are assigned after
// all workers finish, so the report does not depend on scheduling.
func (e *Engine) Scan(ctx context.Context, patterns []NamedPattern) (*Report, error) {
	for _, p := range patterns {
		if len(p.Pattern) == 0 {
			return nil, &ScanError{
				Code:    ErrCodeInvalidPattern,
				Message: fmt.Sprintf("pattern %q has no steps", p.Name),
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.resumeClock(ctx); err != nil {
		return nil, err
	}

	runID := e.runIDs.Generate()
	methods := e.methodsWithCode()
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.Name
	}
	log := e.logger.With(zap.String("run_id", runID))
	log.Info("scan started",
		zap.Int("methods", len(methods)),
		zap.Strings("patterns", names),
		zap.Int("workers", e.workers))

	perMethod := make([][]Match, len(methods))
	err := e.forEachMethod(ctx, methods, func(i int, m *ir.Method) {
		insns := m.Instructions()
		var found []Match
		for _, p := range patterns {
			for _, start := range match.MatchIndices(insns, p.Pattern) {
				found = append(found, Match{
					Pattern: p.Name,
					Method:  m,
					Start:   start,
					Insns:   p.Pattern.Window(insns, start),
				})
			}
		}
		perMethod[i] = found
	})
	if err != nil {
		log.Warn("scan cancelled", zap.Error(err))
		return nil, &ScanError{Code: ErrCodeCancelled, Message: "scan cancelled", RunID: runID, Err: err}
	}

	// The quota is checked before any seq is stamped, so a failed scan
	// leaves the clock untouched.
	quota := NewQuotaEnforcer(e.maxMatches)
	for _, found := range perMethod {
		for range found {
			if err := quota.Check(runID); err != nil {
				log.Warn("scan quota exceeded", zap.Int("limit", quota.MaxMatches()))
				return nil, &ScanError{Code: ErrCodeQuotaExceeded, Message: "too many matches", RunID: runID, Err: err}
			}
		}
	}

	report := &Report{RunID: runID, Patterns: names, Methods: len(methods)}
	firstSeq := e.clock.Current() + 1
	for _, found := range perMethod {
		for _, m := range found {
			m.Seq = e.clock.Next()
			report.Matches = append(report.Matches, m)
			log.Debug("match",
				zap.Int64("seq", m.Seq),
				zap.String("pattern", m.Pattern),
				zap.String("method", m.Method.FullName()),
				zap.Int("start", m.Start))
		}
	}

	if e.store != nil {
		if err := e.persist(ctx, report, firstSeq); err != nil {
			log.Error("persisting scan failed", zap.Error(err))
			return nil, &ScanError{Code: ErrCodePersistFailed, Message: "persist scan", RunID: runID, Err: err}
		}
	}

	log.Info("scan finished", zap.Int("matches", len(report.Matches)))
	return report, nil
}

// resumeClock moves the clock past every seq already in the store.
func (e *Engine) resumeClock(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	last, err := e.store.LastSeq(ctx)
	if err != nil {
		return &ScanError{Code: ErrCodePersistFailed, Message: "read last seq", Err: err}
	}
	e.clock.advanceTo(last)
	return nil
}

func (e *Engine) persist(ctx context.Context, r *Report, firstSeq int64) error {
	run := store.ScanRun{
		ID:          r.RunID,
		Patterns:    r.Patterns,
		MethodCount: r.Methods,
		MatchCount:  len(r.Matches),
		FirstSeq:    firstSeq,
		LastSeq:     e.clock.Current(),
	}
	if len(r.Matches) == 0 {
		run.FirstSeq = run.LastSeq
	}
	records := make([]store.MatchRecord, len(r.Matches))
	for i, m := range r.Matches {
		records[i] = MatchRecord(r.RunID, m)
	}
	return e.store.WriteScan(ctx, run, records)
}

// MatchRecord converts a match into its stored form.
func MatchRecord(runID string, m Match) store.MatchRecord {
	insns := make([]string, len(m.Insns))
	for i, insn := range m.Insns {
		insns[i] = insn.String()
	}
	return store.MatchRecord{
		RunID:   runID,
		Seq:     m.Seq,
		Pattern: m.Pattern,
		Method:  m.Method.FullName(),
		Start:   m.Start,
		Insns:   insns,
	}
}

// FindInstructions reports every instruction in the program accepted by
// p, in visiting order. Hits are stamped with seqs but not persisted.
func (e *Engine) FindInstructions(ctx context.Context, name string, p match.Matcher[*ir.Instruction]) ([]Hit, error) {
	if p == nil {
		return nil, &ScanError{Code: ErrCodeInvalidPattern, Message: fmt.Sprintf("predicate %q is nil", name)}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	methods := e.methodsWithCode()
	perMethod := make([][]Hit, len(methods))
	err := e.forEachMethod(ctx, methods, func(i int, m *ir.Method) {
		insns := m.Instructions()
		var hits []Hit
		for _, idx := range match.FindInsnIndices(insns, p) {
			hits = append(hits, Hit{Method: m, Index: idx, Insn: insns[idx]})
		}
		perMethod[i] = hits
	})
	if err != nil {
		return nil, &ScanError{Code: ErrCodeCancelled, Message: "find cancelled", Err: err}
	}

	var out []Hit
	for _, hits := range perMethod {
		for _, h := range hits {
			h.Seq = e.clock.Next()
			out = append(out, h)
		}
	}
	e.logger.Debug("find instructions finished",
		zap.String("predicate", name),
		zap.Int("hits", len(out)))
	return out, nil
}
