package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/dexmatch/internal/compiler"
	"github.com/roach88/dexmatch/internal/profiles"
	"github.com/roach88/dexmatch/internal/store"
)

// ErrCodeProfileFailed reports an unreadable or malformed stats file.
const ErrCodeProfileFailed = "E008"

// ProfileOptions holds flags for the profile command.
type ProfileOptions struct {
	*RootOptions
	SpecsDir string
	DBPath   string
	Top      int
}

// ProfileLine is one method in command output.
type ProfileLine struct {
	Method        string  `json:"method"`
	AppearPercent float64 `json:"appear_pct"`
	CallCount     float64 `json:"call_count"`
	OrderPercent  float64 `json:"order_pct"`
	MinAPILevel   uint8   `json:"min_api_level"`
}

// ProfileResult is the output of the profile command.
type ProfileResult struct {
	File    string        `json:"file"`
	Methods int           `json:"methods"`
	Stored  bool          `json:"stored"`
	Top     []ProfileLine `json:"top"`
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profile [stats-csv]",
		Short: "Load a method stats file",
		Long: `Parse a method stats CSV against the program in --specs.

Rows naming methods the program does not define are skipped. The
methods that appear in the most traces are printed. With --db the
profiles are stored in SQLite.

The CSV path defaults to profiles.path from the config file.

Examples:
  dexmatch profile stats.csv --specs ./specs
  dexmatch profile stats.csv --specs ./specs --db scans.db --top 20`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runProfile(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SpecsDir, "specs", "", "directory holding the CUE program (required)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to store profiles in")
	cmd.Flags().IntVar(&opts.Top, "top", 10, "number of methods to print (0 = all)")
	_ = cmd.MarkFlagRequired("specs")

	return cmd
}

func runProfile(opts *ProfileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()

	if path == "" {
		path = cfg.Profiles.Path
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, compiler.ErrCodeNotFound, "no stats file given and profiles.path is not configured", nil)
	}

	loadResult, loadErrors := compiler.LoadSpecs(opts.SpecsDir, compiler.LoadModeFailFast)
	if err := checkLoad(formatter, loadResult, loadErrors); err != nil {
		return err
	}

	mp := profiles.New(loadResult.Registry, profiles.WithLogger(opts.logger()))
	if err := mp.ParseStatsFile(path); err != nil {
		var details any
		var pe *profiles.ParseError
		if errors.As(err, &pe) {
			details = map[string]int{"line": pe.Line, "column": pe.Column}
		}
		return formatter.Fail(ExitCommandError, ErrCodeProfileFailed, err.Error(), details)
	}
	formatter.VerboseLog("Loaded %d method profile(s) from %s", mp.Len(), path)

	result := ProfileResult{File: path, Methods: mp.Len(), Top: topProfiles(mp.Entries(), opts.Top)}

	dbPath := cfg.Database
	if opts.DBPath != "" {
		dbPath = opts.DBPath
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeProfileFailed, fmt.Sprintf("opening database: %v", err), nil)
		}
		defer st.Close()
		if err := mp.Save(cmd.Context(), st); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeProfileFailed, fmt.Sprintf("storing profiles: %v", err), nil)
		}
		result.Stored = true
	}

	return outputProfileResult(formatter, result)
}

// topProfiles orders entries by appear percentage, highest first, and
// keeps n of them. Ties keep name order.
func topProfiles(entries []profiles.Entry, n int) []ProfileLine {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Stats.AppearPercent > entries[j].Stats.AppearPercent
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	lines := make([]ProfileLine, len(entries))
	for i, e := range entries {
		lines[i] = ProfileLine{
			Method:        e.Method.FullName(),
			AppearPercent: e.Stats.AppearPercent,
			CallCount:     e.Stats.CallCount,
			OrderPercent:  e.Stats.OrderPercent,
			MinAPILevel:   e.Stats.MinAPILevel,
		}
	}
	return lines
}

func outputProfileResult(formatter *OutputFormatter, result ProfileResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Loaded %d method profile(s) from %s\n", result.Methods, result.File)
	if result.Stored {
		fmt.Fprintln(w, "  stored in database")
	}
	if len(result.Top) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%8s %10s %8s %4s  %s\n", "appear%", "calls", "order%", "api", "method")
	for _, l := range result.Top {
		fmt.Fprintf(w, "%8.2f %10.2f %8.2f %4d  %s\n",
			l.AppearPercent, l.CallCount, l.OrderPercent, l.MinAPILevel, l.Method)
	}
	return nil
}
