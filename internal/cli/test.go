package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jsonlogic/internal/harness"
)

// ErrCodeTestFailed marks a test run with at least one failing scenario.
const ErrCodeTestFailed = "E_TEST_FAILED"

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden files from the current run
	Filter string // glob matched against the scenario file name
}

// GoldenStatus reports what happened to a scenario's golden file.
type GoldenStatus string

const (
	GoldenNone     GoldenStatus = ""         // no golden file
	GoldenMatched  GoldenStatus = "matched"  // snapshot equals golden file
	GoldenUpdated  GoldenStatus = "updated"  // golden file rewritten
	GoldenMismatch GoldenStatus = "mismatch" // snapshot differs
)

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string       `json:"name"`
	Pass   bool         `json:"pass"`
	Cases  int          `json:"cases"`
	Golden GoldenStatus `json:"golden,omitempty"`
	Errors []string     `json:"errors,omitempty"`
}

// TestResult aggregates every scenario in a run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *TestResult) add(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every YAML scenario under <scenarios-dir> through the harness.

A scenario names its manifest and query, then lists cases: a query input
plus the SQL, parameters, error code or rows it must produce. When
golden/<file>.golden sits next to a scenario, the run's snapshot must
match it byte for byte; --update rewrites it instead.

Exit codes:
  0 - every scenario passed
  1 - at least one scenario failed
  2 - the scenarios directory could not be read

Examples:
  jsonlogic test ./testdata/scenarios
  jsonlogic test ./testdata/scenarios --filter "two_tables_*"
  jsonlogic test ./testdata/scenarios --update
  jsonlogic test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from this run")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, dir string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, "scenarios directory not found: "+dir)
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{Scenarios: []ScenarioResult{}, Total: len(files)}
	if len(files) == 0 && opts.Format != "json" {
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	for _, file := range files {
		formatter.VerboseLog("Running %s", file)
		sr := runScenario(file, opts.Update)
		result.add(sr)
		if opts.Format != "json" {
			printScenario(formatter, sr)
		}
	}

	if opts.Format == "json" {
		return writeTestJSON(formatter, result)
	}
	return writeTestSummary(formatter, result)
}

// findScenarioFiles walks dir for .yaml and .yml files, skipping golden
// directories. A non-empty filter is matched against the file name
// without its extension.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() && path != dir && d.Name() == "golden":
			return filepath.SkipDir
		case d.IsDir():
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenario loads and runs one scenario file, then checks or rewrites
// its golden snapshot.
func runScenario(file string, update bool) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	run, err := harness.RunWithLogger(scenario, slog.Default())
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	sr := ScenarioResult{
		Name:   scenario.Name,
		Pass:   run.Pass,
		Cases:  len(run.Cases),
		Errors: run.Errors,
	}

	snapshot, err := harness.MarshalSnapshot(scenario.Name, run)
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to marshal snapshot: %v", err))
		return sr
	}

	sr.Golden, err = syncGolden(goldenFilePath(file), snapshot, update)
	switch {
	case err != nil:
		sr.Pass = false
		sr.Errors = append(sr.Errors, err.Error())
	case sr.Golden == GoldenMismatch:
		sr.Pass = false
		sr.Errors = append(sr.Errors, "result does not match golden file (run with --update to regenerate)")
	}
	return sr
}

// goldenFilePath maps dir/name.yaml to dir/golden/name.golden.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// syncGolden rewrites the golden file when update is set. Otherwise it
// compares snapshot against the file, if there is one.
func syncGolden(path string, snapshot []byte, update bool) (GoldenStatus, error) {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return GoldenNone, fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, snapshot, 0644); err != nil {
			return GoldenNone, fmt.Errorf("failed to write golden file: %w", err)
		}
		return GoldenUpdated, nil
	}

	want, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return GoldenNone, nil
	case err != nil:
		return GoldenNone, fmt.Errorf("failed to read golden file: %w", err)
	case !bytes.Equal(want, snapshot):
		return GoldenMismatch, nil
	}
	return GoldenMatched, nil
}

func printScenario(f *OutputFormatter, sr ScenarioResult) {
	if !sr.Pass {
		fmt.Fprintf(f.Writer, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(f.Writer, "  %s\n", e)
		}
		return
	}
	suffix := ""
	if sr.Golden == GoldenUpdated {
		suffix = ", golden updated"
	}
	fmt.Fprintf(f.Writer, "✓ %s (%d cases%s)\n", sr.Name, sr.Cases, suffix)
}

// writeTestJSON emits the run as one indented response. The data is kept
// on failure so callers can see which scenarios broke.
func writeTestJSON(f *OutputFormatter, result TestResult) error {
	resp := CLIResponse{Status: "ok", Data: result, TraceID: f.traceID()}
	if result.Failed > 0 {
		resp.Status = "error"
		resp.Error = &CLIError{Code: ErrCodeTestFailed, Message: failedMessage(result)}
	}

	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, failedMessage(result))
	}
	return nil
}

func writeTestSummary(f *OutputFormatter, result TestResult) error {
	fmt.Fprintf(f.Writer, "\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, failedMessage(result))
	}
	fmt.Fprintln(f.Writer, "✓ All scenarios passed")
	return nil
}

func failedMessage(result TestResult) string {
	return fmt.Sprintf("%d scenario(s) failed", result.Failed)
}
