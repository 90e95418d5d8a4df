package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/jsonlogic/internal/querysql"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// pragma is one connection setting applied by Open.
type pragma struct {
	name  string
	value string
	// want is the value PRAGMA <name> reports once applied.
	want string
}

// pragmas are applied in order. WAL lets readers see a consistent snapshot
// while fixtures load; busy_timeout is in milliseconds.
var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", want: "wal"},
	{name: "synchronous", value: "NORMAL", want: "1"},
	{name: "busy_timeout", value: "5000", want: "5000"},
	{name: "foreign_keys", value: "ON", want: "1"},
}

// Open opens (or creates) the SQLite database at path and applies the
// store's pragmas. Use MemoryPath for a throwaway database.
func Open(path string) (*Store, error) {
	return OpenContext(context.Background(), path)
}

// OpenContext is Open with a context bounding the connection check and
// pragma setup.
func OpenContext(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: an in-memory database exists per connection, and
	// a file database never contends with itself.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	slog.Debug("store opened", "path", path)
	return &Store{db: db}, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exec runs a statement or script (fixtures, DDL).
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, stmt, bindArgs(args)...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Select compiles sel for SQLite and returns every row.
func (s *Store) Select(ctx context.Context, sel querysql.Select) (*Result, error) {
	query, params, err := querysql.Compile(sel, querysql.DialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("compile select: %w", err)
	}

	slog.Debug("executing select", "sql", query, "params", len(params))

	rows, err := s.db.QueryContext(ctx, query, bindArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("select complete", "rows", len(result.Rows))
	return result, nil
}

// bindArgs converts times to UTC. go-sqlite3 stores a time as text with
// its offset and SQLite compares that text, so one instant must always
// be written the same way.
func bindArgs(args []any) []any {
	out := slices.Clone(args)
	for i, a := range out {
		switch v := a.(type) {
		case time.Time:
			out[i] = v.UTC()
		case *time.Time:
			if v != nil {
				out[i] = v.UTC()
			}
		}
	}
	return out
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	for _, p := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// verifyPragma reads back one pragma. Used by tests.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("read pragma %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("pragma %s = %q, want %q", name, value, expected)
	}
	return nil
}
