package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/jsonlogic/internal/codegen"
	"github.com/roach88/jsonlogic/internal/compiler"
	"github.com/roach88/jsonlogic/internal/ir"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	OutDir  string
	Package string
	Source  string
	Check   bool
}

// GenerateResult reports the files a generate run wrote or checked.
type GenerateResult struct {
	OutDir string      `json:"out_dir"`
	Files  []string    `json:"files"`
	Stale  []StaleFile `json:"stale,omitempty"`
}

// StaleFile is a generated file that no longer matches its manifest.
type StaleFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"` // "missing" | "spec changed" | "edited"
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <manifest>",
		Short: "Generate typed query inputs from manifests",
		Long: `Generate Go source for every query aggregate in a manifest.

Each aggregate becomes <snake_name>_gen.go in the output directory, with
one name type per column, a typed input struct, a Decode function, and an
Apply method. With --check nothing is written; the command fails if any
file is missing or out of date.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Go package name (overrides the manifest)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "manifest path recorded in file headers (default: the argument)")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail if generated files are missing or stale")

	return cmd
}

func runGenerate(rootOpts *RootOptions, opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadManifests(path, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			exitCode := ExitCommandError
			if loadErr.Code == ErrCodeCompileFailed {
				exitCode = ExitFailure
			}
			return outputGenerateError(formatter, loadErr.Code, loadErr.Message, exitCode)
		}
		return outputGenerateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), ExitCommandError)
	}

	if errs := compiler.Validate(loadResult.Specs); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	source := opts.Source
	if source == "" {
		source = filepath.ToSlash(path)
	}
	files, err := codegen.GenerateAll(loadResult.Specs, codegen.Options{
		Package: opts.Package,
		Source:  source,
	})
	if err != nil {
		return outputGenerateError(formatter, ErrCodeCompileFailed, err.Error(), ExitFailure)
	}

	result := GenerateResult{OutDir: opts.OutDir}
	for name := range files {
		result.Files = append(result.Files, name)
	}
	sort.Strings(result.Files)

	if opts.Check {
		for _, spec := range loadResult.Specs {
			name := codegen.FileName(spec)
			if stale, ok := checkGenerated(filepath.Join(opts.OutDir, name), files[name], spec); !ok {
				stale.File = name
				result.Stale = append(result.Stale, stale)
			}
		}
		return outputCheckResult(formatter, result)
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return outputGenerateError(formatter, ErrCodeWriteFailed, fmt.Sprintf("creating output directory: %v", err), ExitCommandError)
	}
	for _, name := range result.Files {
		target := filepath.Join(opts.OutDir, name)
		if err := os.WriteFile(target, files[name], 0644); err != nil {
			return outputGenerateError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", target, err), ExitCommandError)
		}
		slog.Debug("wrote generated file", "path", target, "bytes", len(files[name]))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Generated %d file(s) in %s\n", len(result.Files), opts.OutDir)
	for _, name := range result.Files {
		fmt.Fprintf(formatter.Writer, "  %s\n", name)
	}
	return nil
}

// checkGenerated compares an on-disk file with freshly generated source.
func checkGenerated(target string, want []byte, spec ir.QuerySpec) (StaleFile, bool) {
	got, err := os.ReadFile(target)
	if err != nil {
		return StaleFile{Reason: "missing"}, false
	}
	if stale, err := codegen.IsStale(spec, got); err != nil || stale {
		return StaleFile{Reason: "spec changed"}, false
	}
	if !bytes.Equal(got, want) {
		return StaleFile{Reason: "edited"}, false
	}
	return StaleFile{}, true
}

// outputCheckResult reports a --check run.
func outputCheckResult(formatter *OutputFormatter, result GenerateResult) error {
	if len(result.Stale) == 0 {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d generated file(s) up to date\n", len(result.Files))
		return nil
	}

	if formatter.Format == "json" {
		if err := formatter.Error(ErrCodeStale, fmt.Sprintf("%d generated file(s) out of date", len(result.Stale)), result.Stale); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Generated files out of date")
		for _, s := range result.Stale {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", s.File, s.Reason)
		}
		fmt.Fprintln(formatter.Writer, "\nRun 'jsonlogic generate' to regenerate.")
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %d generated file(s) out of date", ErrCodeStale, len(result.Stale)))
}

// outputGenerateError outputs an error and returns an ExitError.
func outputGenerateError(formatter *OutputFormatter, code, message string, exitCode int) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}
