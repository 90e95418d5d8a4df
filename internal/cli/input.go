package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jsonlogic/internal/jsonlogic"
	"github.com/roach88/jsonlogic/internal/schema"
)

// InputOptions selects an aggregate and the query input to decode.
// Shared by the filter and query commands.
type InputOptions struct {
	Query     string
	Input     string
	InputFile string
	Strict    bool
}

func addInputFlags(cmd *cobra.Command, opts *InputOptions) {
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "aggregate name (optional when the manifest declares one)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "query input JSON")
	cmd.Flags().StringVar(&opts.InputFile, "input-file", "", "read query input from a file (- for stdin)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject undeclared input keys")
}

// DecodeDetails is the error detail attached to a rejected input.
type DecodeDetails struct {
	Code     jsonlogic.ErrorCode `json:"code"`
	Field    string              `json:"field,omitempty"`
	Operator string              `json:"operator,omitempty"`
	Expected string              `json:"expected,omitempty"`
	Got      string              `json:"got,omitempty"`
}

// readInput returns the query input bytes. --input wins over
// --input-file; with neither, stdin is read.
func readInput(opts *InputOptions, stdin io.Reader) ([]byte, error) {
	switch {
	case opts.Input != "":
		return []byte(opts.Input), nil
	case opts.InputFile != "" && opts.InputFile != "-":
		data, err := os.ReadFile(opts.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return data, nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read input from stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, errors.New("no query input: pass --input, --input-file, or pipe JSON to stdin")
		}
		return data, nil
	}
}

// loadSchema loads a manifest and returns the schema of the selected
// aggregate. Errors are written through formatter.
func loadSchema(formatter *OutputFormatter, path string, opts *InputOptions) (*schema.Schema, error) {
	loadResult, loadErrors := LoadManifests(path, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return nil, formatter.Fail(ExitCommandError, loadErr.Code, errors.New(loadErr.Message))
		}
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, loadErrors[0])
	}

	var schemaOpts []schema.Option
	if opts.Strict {
		schemaOpts = append(schemaOpts, schema.WithStrict())
	}
	registry, err := schema.NewRegistry(loadResult.Specs, schemaOpts...)
	if err != nil {
		return nil, formatter.Fail(ExitFailure, ErrCodeCompileFailed, err)
	}

	name := opts.Query
	if name == "" {
		names := registry.Names()
		if len(names) != 1 {
			return nil, formatter.Fail(ExitCommandError, ErrCodeQueryNotFound,
				fmt.Errorf("manifest declares %d queries %v; select one with --query", len(names), names))
		}
		name = names[0]
	}

	s, ok := registry.Lookup(name)
	if !ok {
		return nil, formatter.Fail(ExitCommandError, ErrCodeQueryNotFound,
			fmt.Errorf("query %q not found (have %v)", name, registry.Names()))
	}
	formatter.VerboseLog("Using query %s from %s", name, path)
	return s, nil
}

// decodeInput reads and decodes the query input against s.
func decodeInput(formatter *OutputFormatter, s *schema.Schema, opts *InputOptions, stdin io.Reader) (*schema.Input, error) {
	data, err := readInput(opts, stdin)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeBadInput, err)
	}

	in, err := s.Decode(data)
	if err != nil {
		var details *DecodeDetails
		var de *jsonlogic.DecodeError
		if errors.As(err, &de) {
			details = &DecodeDetails{
				Code:     de.Code,
				Field:    de.Field,
				Operator: de.Operator,
				Expected: de.Expected,
				Got:      de.Got,
			}
		}
		if outErr := formatter.Error(ErrCodeBadInput, err.Error(), details); outErr != nil {
			return nil, outErr
		}
		return nil, WrapExitError(ExitFailure, ErrCodeBadInput, err)
	}
	return in, nil
}
