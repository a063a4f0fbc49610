// Package profiles reads aggregated method-stats CSV files.
//
// A stats file starts with the header
//
//	index,name,appear100,appear#,avg_call,avg_order,avg_rank100,min_api_level
//
// and has one row per method. Only the normalized columns are kept:
// appear100, avg_call, avg_rank100 and min_api_level. Rows naming a
// method the program does not know are skipped.
package profiles

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/roach88/dexmatch/internal/ir"
	"github.com/roach88/dexmatch/internal/store"
)

// Column positions.
const (
	colIndex = iota
	colName
	colAppear100
	colAppearNumber
	colAvgCall
	colAvgOrder
	colAvgRank100
	colMinAPILevel

	numColumns
)

// Header lists the expected column names in order.
var Header = [numColumns]string{
	"index", "name", "appear100", "appear#", "avg_call", "avg_order", "avg_rank100", "min_api_level",
}

// Stats holds the profile of one method.
type Stats struct {
	AppearPercent float64 // share of traces the method appears in, 0-100
	CallCount     float64 // average calls per trace
	OrderPercent  float64 // average position of the first call, 0-100
	MinAPILevel   uint8
}

// Entry pairs a method with its stats.
type Entry struct {
	Method *ir.MethodRef
	Stats  Stats
}

// ParseError reports the first malformed line of a stats file.
// Line and Column are 1-based; Column is 0 for line-level problems.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// MethodResolver finds method references by full name.
// *ir.Registry implements it.
type MethodResolver interface {
	GetMethod(full string) *ir.MethodRef
}

// MethodProfiles maps methods to their stats.
type MethodProfiles struct {
	resolver MethodResolver
	logger   *zap.Logger
	stats    map[*ir.MethodRef]Stats
}

// Option configures MethodProfiles.
type Option func(*MethodProfiles)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *MethodProfiles) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates an empty profile set resolving names through r.
func New(r MethodResolver, opts ...Option) *MethodProfiles {
	p := &MethodProfiles{
		resolver: r,
		logger:   zap.NewNop(),
		stats:    make(map[*ir.MethodRef]Stats),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseStatsFile reads the stats file at path. An empty path is an error.
func (p *MethodProfiles) ParseStatsFile(path string) error {
	if path == "" {
		return errors.New("no stats file given")
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open stats file")
	}
	defer f.Close()

	p.logger.Debug("parsing method stats", zap.String("path", path))
	return errors.Wrapf(p.Parse(f), "parse %s", path)
}

// Parse reads a stats file from r. The first malformed line aborts the
// parse with a *ParseError; rows accepted before it are kept.
func (p *MethodProfiles) Parse(r io.Reader) error {
	start := time.Now()
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	rows, skipped := 0, 0
	for first := true; ; first = false {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return &ParseError{Line: csvErr.Line, Column: csvErr.Column, Message: csvErr.Err.Error()}
			}
			return errors.Wrap(err, "read stats")
		}
		line, _ := cr.FieldPos(0)
		if first {
			if err := checkHeader(record, line); err != nil {
				return err
			}
			continue
		}
		ok, err := p.parseRow(record, line)
		if err != nil {
			return err
		}
		rows++
		if !ok {
			skipped++
		}
	}

	p.logger.Info("method profiles parsed",
		zap.Int("rows", rows),
		zap.Int("skipped", skipped),
		zap.Int("methods", len(p.stats)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// checkHeader accepts the eight expected names, optionally followed by a
// single empty cell from a trailing comma.
func checkHeader(record []string, line int) error {
	for i, cell := range record {
		expected := ""
		if i < numColumns {
			expected = Header[i]
		} else if i > numColumns {
			return &ParseError{Line: line, Column: i + 1, Message: "too many header columns"}
		}
		if cell != expected {
			return &ParseError{
				Line:    line,
				Column:  i + 1,
				Message: fmt.Sprintf("unexpected header %q, want %q", cell, expected),
			}
		}
	}
	if len(record) < numColumns {
		return &ParseError{
			Line:    line,
			Column:  len(record) + 1,
			Message: fmt.Sprintf("missing header %q", Header[len(record)]),
		}
	}
	return nil
}

// parseRow stores one row's stats. It reports false when the method name
// does not resolve.
func (p *MethodProfiles) parseRow(record []string, line int) (bool, error) {
	if len(record) != numColumns {
		return false, &ParseError{
			Line:    line,
			Message: fmt.Sprintf("expected %d columns, got %d", numColumns, len(record)),
		}
	}

	var s Stats
	var err error
	if s.AppearPercent, err = parseDouble(record, colAppear100, line); err != nil {
		return false, err
	}
	if s.CallCount, err = parseDouble(record, colAvgCall, line); err != nil {
		return false, err
	}
	if s.OrderPercent, err = parseDouble(record, colAvgRank100, line); err != nil {
		return false, err
	}
	if s.MinAPILevel, err = parseByte(record, colMinAPILevel, line); err != nil {
		return false, err
	}

	name := record[colName]
	ref := p.resolver.GetMethod(name)
	if ref == nil {
		p.logger.Debug("failed to resolve profiled method", zap.String("name", name), zap.Int("line", line))
		return false, nil
	}
	p.stats[ref] = s
	return true, nil
}

// numericSpace is the set of leading characters a numeric cell may carry.
// Trailing characters are still rejected.
const numericSpace = " \t\n\v\f\r"

func parseDouble(record []string, col, line int) (float64, error) {
	v, err := cast.ToFloat64E(strings.TrimLeft(record[col], numericSpace))
	if err != nil {
		return 0, &ParseError{
			Line:    line,
			Column:  col + 1,
			Message: fmt.Sprintf("can't parse %q into a double", record[col]),
		}
	}
	return v, nil
}

// parseByte accepts decimal digits only, so "021" is 21 rather than an
// octal literal. Leading space is skipped as in parseDouble.
func parseByte(record []string, col, line int) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimLeft(record[col], numericSpace), 10, 8)
	if err != nil {
		return 0, &ParseError{
			Line:    line,
			Column:  col + 1,
			Message: fmt.Sprintf("can't parse %q into a uint8", record[col]),
		}
	}
	return uint8(v), nil
}

// Get returns the stats of ref.
func (p *MethodProfiles) Get(ref *ir.MethodRef) (Stats, bool) {
	s, ok := p.stats[ref]
	return s, ok
}

// Len returns the number of profiled methods.
func (p *MethodProfiles) Len() int {
	return len(p.stats)
}

// Entries returns every profiled method, sorted by full name.
func (p *MethodProfiles) Entries() []Entry {
	out := make([]Entry, 0, len(p.stats))
	for ref, s := range p.stats {
		out = append(out, Entry{Method: ref, Stats: s})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Method.FullName() < out[j].Method.FullName()
	})
	return out
}

// Save writes every profile to s, replacing older profiles of the same
// methods.
func (p *MethodProfiles) Save(ctx context.Context, s *store.Store) error {
	entries := p.Entries()
	records := make([]store.ProfileRecord, len(entries))
	for i, e := range entries {
		records[i] = store.ProfileRecord{
			Method:        e.Method.FullName(),
			AppearPercent: e.Stats.AppearPercent,
			CallCount:     e.Stats.CallCount,
			OrderPercent:  e.Stats.OrderPercent,
			MinAPILevel:   e.Stats.MinAPILevel,
		}
	}
	return errors.Wrap(s.WriteProfiles(ctx, records), "save profiles")
}

// Load reads stored profiles, skipping methods that no longer resolve.
func (p *MethodProfiles) Load(ctx context.Context, s *store.Store) error {
	records, err := s.ReadProfiles(ctx)
	if err != nil {
		return errors.Wrap(err, "load profiles")
	}
	for _, r := range records {
		ref := p.resolver.GetMethod(r.Method)
		if ref == nil {
			p.logger.Debug("failed to resolve stored profile", zap.String("name", r.Method))
			continue
		}
		p.stats[ref] = Stats{
			AppearPercent: r.AppearPercent,
			CallCount:     r.CallCount,
			OrderPercent:  r.OrderPercent,
			MinAPILevel:   r.MinAPILevel,
		}
	}
	return nil
}
