package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/jsonlogic/internal/querysql"
	"github.com/roach88/jsonlogic/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	InputOptions
	DBPath  string
	Columns []string
	OrderBy []string
	Limit   int
}

// QueryResult is the output of a query run.
type QueryResult struct {
	Query   string           `json:"query"`
	SQL     string           `json:"sql"`
	Params  []any            `json:"params"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <manifest>",
		Short: "Run a query input against a SQLite database",
		Long: `Decode a JSON Logic query input, fold it into the aggregate's
SELECT, and run it against a SQLite database.

Example:
  jsonlogic query manifest.cue --db ./app.db \
    --input '{"tbl_two_other_notes": {"==": [{"var": "tbl_two_other_notes"}, null]}}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, opts, args[0], cmd)
		},
	}

	addInputFlags(cmd, &opts.InputOptions)
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database path (required)")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "columns to select (default *)")
	cmd.Flags().StringSliceVar(&opts.OrderBy, "order-by", nil, "ORDER BY terms, e.g. tbl_one.id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows (0 for no limit)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(rootOpts *RootOptions, opts *QueryOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("--limit must be >= 0, got %d", opts.Limit))
	}
	if opts.DBPath != store.MemoryPath {
		if _, err := os.Stat(opts.DBPath); errors.Is(err, os.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("database not found: %s", opts.DBPath))
		}
	}

	s, err := loadSchema(formatter, path, &opts.InputOptions)
	if err != nil {
		return err
	}
	in, err := decodeInput(formatter, s, &opts.InputOptions, cmd.InOrStdin())
	if err != nil {
		return err
	}

	base := s.NewSelect().Columns(opts.Columns...).OrderBy(opts.OrderBy...).Limit(opts.Limit)
	sel, _ := querysql.AsSelect(in.Apply(base))

	sqlText, params, err := querysql.Compile(sel, querysql.DialectSQLite)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
	}

	st, err := store.OpenContext(cmd.Context(), opts.DBPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	defer st.Close()

	res, err := st.Select(cmd.Context(), sel)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	slog.Debug("query complete", "query", s.Name(), "db", opts.DBPath, "rows", len(res.Rows))

	if params == nil {
		params = []any{}
	}
	result := QueryResult{
		Query:   s.Name(),
		SQL:     sqlText,
		Params:  params,
		Columns: res.Columns,
		Rows:    res.Records(),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.VerboseLog("%s", sqlText)
	return writeTable(formatter, res)
}

// writeTable prints rows as an aligned table followed by a row count.
func writeTable(formatter *OutputFormatter, res *store.Result) error {
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellText(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "(%d rows)\n", len(res.Rows))
	return nil
}

// cellText renders a normalized column value.
func cellText(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
