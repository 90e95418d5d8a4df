package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/jsonlogic/internal/querysql"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	InputOptions
	Dialect string
}

// FilterResult is the translation of one query input.
type FilterResult struct {
	Query      string          `json:"query"`
	Conditions []ConditionView `json:"conditions"`
	SQL        string          `json:"sql"`
	Params     []any           `json:"params"`
}

// ConditionView is one decoded condition as shown to the user.
type ConditionView struct {
	Field string `json:"field"`
	Op    string `json:"op"`
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{}

	cmd := &cobra.Command{
		Use:   "filter <manifest>",
		Short: "Decode a query input and print the SQL it selects",
		Long: `Decode a JSON Logic query input against an aggregate and print the
parameterized SELECT it folds into. Nothing is executed.

Example:
  jsonlogic filter manifest.cue --query TwoTablesQuery \
    --input '{"tbl_id": {"==": [{"var": "tbl_id"}, 7]}}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(rootOpts, opts, args[0], cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions)
	cmd.Flags().StringVar(&opts.Dialect, "dialect", string(querysql.DialectSQLite), "placeholder dialect (sqlite|postgres)")

	return cmd
}

func runFilter(rootOpts *RootOptions, opts *FilterOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	dialect, err := querysql.ParseDialect(opts.Dialect)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	s, err := loadSchema(formatter, path, &opts.InputOptions)
	if err != nil {
		return err
	}
	in, err := decodeInput(formatter, s, &opts.InputOptions, cmd.InOrStdin())
	if err != nil {
		return err
	}

	sel, _ := querysql.AsSelect(in.Apply(s.NewSelect()))
	sql, params, err := querysql.Compile(sel, dialect)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
	}
	slog.Debug("filter translated", "query", s.Name(), "conditions", len(in.Conditions()), "params", len(params))

	result := FilterResult{
		Query:  s.Name(),
		SQL:    sql,
		Params: params,
	}
	for _, c := range in.Conditions() {
		result.Conditions = append(result.Conditions, ConditionView{Field: c.Field, Op: string(c.Op)})
	}
	if result.Params == nil {
		result.Params = []any{}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.SQL)
	for i, p := range result.Params {
		fmt.Fprintf(formatter.Writer, "  %s = %s\n", dialect.ParamLabel(i+1), querysql.FormatBind(p))
	}
	return nil
}
