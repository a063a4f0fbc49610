package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/dexmatch/internal/compiler"
	"github.com/roach88/dexmatch/internal/ir"
	"github.com/roach88/dexmatch/internal/queryir"
	"github.com/roach88/dexmatch/internal/querymatch"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// PatternSummary describes one compiled pattern.
type PatternSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Steps       int      `json:"steps"`
	Valid       bool     `json:"valid"`
	Warnings    []string `json:"warnings,omitempty"`
}

// CompilationResult summarizes a compiled program and its patterns.
type CompilationResult struct {
	Files    int                        `json:"files"`
	Classes  int                        `json:"classes"`
	Methods  int                        `json:"methods"`
	Patterns []PatternSummary           `json:"patterns"`
	Lint     []compiler.ValidationError `json:"lint,omitempty"`
	Cycles   []compiler.CycleWarning    `json:"cycles,omitempty"`
}

// Problems counts lint errors and invalid patterns.
func (r *CompilationResult) Problems() int {
	n := len(r.Lint)
	for _, p := range r.Patterns {
		if !p.Valid {
			n++
		}
	}
	return n
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile a CUE program and its patterns",
		Long: `Compile the CUE program and instruction patterns in a directory.

The program is checked for access-flag problems and hierarchy cycles,
and every pattern is validated and lowered to a matcher.

Exit codes:
  0 - Program and patterns are valid
  1 - Lint errors or invalid patterns
  2 - Specs could not be loaded or compiled`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the summary as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := compiler.LoadSpecs(specsDir, compiler.LoadModeCollectAll)
	if err := checkLoad(formatter, loadResult, loadErrors); err != nil {
		return err
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := summarize(loadResult)
	for _, p := range result.Patterns {
		formatter.VerboseLog("Compiled pattern: %s (%d step(s))", p.Name, p.Steps)
	}
	opts.logger().Debug("compiled specs",
		zap.String("dir", specsDir),
		zap.Int("classes", result.Classes),
		zap.Int("patterns", len(result.Patterns)),
		zap.Int("problems", result.Problems()))

	if opts.Output != "" {
		if err := writeSummaryToFile(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if err := outputCompileSuccess(formatter, result, opts.Output); err != nil {
		return err
	}
	if n := result.Problems(); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d problem(s) found", n))
	}
	return nil
}

// ErrCodeWriteFailed reports an output file that could not be written.
const ErrCodeWriteFailed = "E007"

// checkLoad reports load and compile errors. It returns nil when the
// specs loaded cleanly.
func checkLoad(formatter *OutputFormatter, result *compiler.LoadResult, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if result == nil {
		var loadErr *compiler.LoadError
		if errors.As(errs[0], &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return formatter.Fail(ExitCommandError, compiler.ErrCodeGeneric, errs[0].Error(), nil)
	}
	return outputCompileErrors(formatter, errs)
}

func summarize(loaded *compiler.LoadResult) *CompilationResult {
	reg := loaded.Registry
	result := &CompilationResult{
		Files:    loaded.FileCount,
		Patterns: make([]PatternSummary, 0, len(loaded.Patterns)),
		Lint:     compiler.ValidateProgram(reg),
		Cycles:   loaded.Cycles,
	}
	for _, cls := range reg.Classes() {
		if !cls.External {
			result.Classes++
		}
	}
	result.Methods = countMethods(reg)

	pc := querymatch.NewCompiler(reg)
	for _, p := range loaded.Patterns {
		result.Patterns = append(result.Patterns, summarizePattern(pc, p))
	}
	return result
}

func summarizePattern(pc *querymatch.Compiler, p queryir.Pattern) PatternSummary {
	s := PatternSummary{Name: p.Name, Description: p.Description, Steps: len(p.Steps)}
	v := queryir.Validate(p)
	s.Warnings = v.Warnings
	s.Valid = v.IsValid
	if !v.IsValid {
		return s
	}
	if _, err := pc.Compile(p); err != nil {
		s.Valid = false
		s.Warnings = append(s.Warnings, err.Error())
	}
	return s
}

// outputCompileSuccess outputs a compiled summary.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d class(es), %d method(s) with code, %d pattern(s)\n\n",
		result.Classes, result.Methods, len(result.Patterns))

	if len(result.Patterns) > 0 {
		fmt.Fprintln(w, "Patterns:")
		for _, p := range result.Patterns {
			mark := "✓"
			if !p.Valid {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s: %d step(s)\n", mark, p.Name, p.Steps)
			for _, warning := range p.Warnings {
				fmt.Fprintf(w, "      %s\n", warning)
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.Lint) > 0 {
		fmt.Fprintln(w, "Lint:")
		for _, e := range result.Lint {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
		fmt.Fprintln(w)
	}

	for _, c := range result.Cycles {
		fmt.Fprintf(w, "Warning: %s\n", c.Message)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote summary to %s\n", outputFile)
	}
	return nil
}

// outputCompileErrors outputs every load or compile error.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		details := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			details[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.Error(compiler.ErrCodeGeneric, fmt.Sprintf("%d compilation error(s)", len(errs)), details); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "✗ Compilation failed with %d error(s):\n\n", len(errs))
	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compileErr.Code, compileErr.Field + ": " + compileErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

// writeSummaryToFile writes the compilation summary as indented JSON.
func writeSummaryToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// countMethods counts methods with code.
func countMethods(reg *ir.Registry) int {
	n := 0
	for _, m := range reg.Methods() {
		if m.Code != nil {
			n++
		}
	}
	return n
}
