package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/dexmatch/internal/compiler"
	"github.com/roach88/dexmatch/internal/engine"
	"github.com/roach88/dexmatch/internal/store"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Patterns   []string // restrict the scan to these patterns
	DBPath     string   // persist the scan here; overrides the config
	Workers    int      // overrides the config when set
	MaxMatches int      // 0 means unlimited
}

// MatchLine is one match in command output.
type MatchLine struct {
	Seq     int64    `json:"seq"`
	Pattern string   `json:"pattern"`
	Method  string   `json:"method"`
	Start   int      `json:"start"`
	Insns   []string `json:"insns"`
}

// MatchResult is the output of the match command.
type MatchResult struct {
	RunID    string         `json:"run_id"`
	Patterns []string       `json:"patterns"`
	Methods  int            `json:"methods"`
	Counts   map[string]int `json:"counts"`
	Matches  []MatchLine    `json:"matches"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <specs-dir>",
		Short: "Scan a program with its patterns",
		Long: `Scan every method body of the program in specs-dir with its patterns.

Matches are reported per method, then per pattern, then by start index,
each with a seq from a logical clock. With --db (or the database config
key) the run and its matches are stored in SQLite, and later runs
continue the seq sequence.

Exit codes:
  0 - Scan completed
  1 - Match quota exceeded
  2 - Command error (bad specs, unknown pattern, database error)

Examples:
  dexmatch match ./specs
  dexmatch match ./specs --pattern alloc --pattern throws
  dexmatch match ./specs --db scans.db --workers 4 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Patterns, "pattern", "p", nil, "pattern to run (repeatable; default all)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to record the scan in")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "concurrent workers (default from config, else one per CPU)")
	cmd.Flags().IntVar(&opts.MaxMatches, "max-matches", 0, "fail when a scan reports more matches (0 = unlimited)")

	return cmd
}

func runMatch(opts *MatchOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()
	logger := opts.logger()

	loadResult, loadErrors := compiler.LoadSpecs(specsDir, compiler.LoadModeFailFast)
	if err := checkLoad(formatter, loadResult, loadErrors); err != nil {
		return err
	}

	patterns, err := loadResult.Select(opts.Patterns)
	if err != nil {
		return formatter.Fail(ExitCommandError, string(engine.ErrCodeInvalidPattern), err.Error(), nil)
	}

	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = opts.Workers
	}
	engineOpts := []engine.Option{
		engine.WithWorkers(workers),
		engine.WithLogger(logger),
		engine.WithMaxMatches(opts.MaxMatches),
	}

	dbPath := cfg.Database
	if opts.DBPath != "" {
		dbPath = opts.DBPath
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return formatter.Fail(ExitCommandError, string(engine.ErrCodePersistFailed), fmt.Sprintf("opening database: %v", err), nil)
		}
		defer st.Close()
		engineOpts = append(engineOpts, engine.WithStore(st))
		formatter.VerboseLog("Recording scan in %s", dbPath)
	}

	eng := engine.New(loadResult.Registry, engineOpts...)
	compiled, err := eng.Compile(patterns)
	if err != nil {
		return formatter.Fail(ExitCommandError, string(engine.ErrCodeInvalidPattern), err.Error(), nil)
	}
	formatter.VerboseLog("Scanning with %d pattern(s) on %d worker(s)", len(compiled), eng.Workers())

	report, err := eng.Scan(cmd.Context(), compiled)
	if err != nil {
		return scanFailure(formatter, err)
	}
	logger.Debug("scan reported", zap.String("run_id", report.RunID), zap.Int("matches", len(report.Matches)))

	return outputMatchResult(formatter, toMatchResult(report))
}

func scanFailure(formatter *OutputFormatter, err error) error {
	var se *engine.ScanError
	if !errors.As(err, &se) {
		return formatter.Fail(ExitCommandError, compiler.ErrCodeGeneric, err.Error(), nil)
	}
	exitCode := ExitCommandError
	if engine.IsQuotaError(err) {
		exitCode = ExitFailure
	}
	return formatter.Fail(exitCode, string(se.Code), se.Error(), map[string]string{"run_id": se.RunID})
}

func toMatchResult(report *engine.Report) MatchResult {
	result := MatchResult{
		RunID:    report.RunID,
		Patterns: report.Patterns,
		Methods:  report.Methods,
		Counts:   make(map[string]int, len(report.Patterns)),
		Matches:  make([]MatchLine, 0, len(report.Matches)),
	}
	for _, name := range report.Patterns {
		result.Counts[name] = report.Count(name)
	}
	for _, m := range report.Matches {
		rec := engine.MatchRecord(report.RunID, m)
		result.Matches = append(result.Matches, MatchLine{
			Seq:     rec.Seq,
			Pattern: rec.Pattern,
			Method:  rec.Method,
			Start:   rec.Start,
			Insns:   rec.Insns,
		})
	}
	return result
}

func outputMatchResult(formatter *OutputFormatter, result MatchResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Scanned %d method(s) with %d pattern(s): %d match(es)\n",
		result.Methods, len(result.Patterns), len(result.Matches))
	fmt.Fprintf(w, "  run %s\n\n", result.RunID)

	for _, name := range result.Patterns {
		fmt.Fprintf(w, "  %s: %d\n", name, result.Counts[name])
	}
	if len(result.Matches) > 0 {
		fmt.Fprintln(w)
	}
	for _, m := range result.Matches {
		fmt.Fprintf(w, "[%d] %s %s@%d\n", m.Seq, m.Pattern, m.Method, m.Start)
		if formatter.Verbose {
			for _, insn := range m.Insns {
				fmt.Fprintf(w, "      %s\n", insn)
			}
		}
	}
	return nil
}
