package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Session owns the DuckDB connection for one run. All SQL funnels
// through Exec/Query so environment substitution happens in exactly
// one place.
type Session struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSession connects to the DuckDB database at path. Use ":memory:"
// for an in-memory database.
func OpenSession(ctx context.Context, path string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb database %s: %w", path, err)
	}

	return &Session{db: db, logger: logger}, nil
}

// Close releases the database connection.
func (s *Session) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for read-only inspection.
func (s *Session) DB() *sql.DB {
	return s.db
}

// Exec runs one statement after substituting {{VAR}} placeholders.
func (s *Session) Exec(ctx context.Context, query string) error {
	query = s.substituteEnv(query)
	s.logger.Debug("executing sql", "sql", query)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	return nil
}

// ParseNative serializes a statement through DuckDB's own parser and
// returns its JSON parse tree. Implements sqlparse.NativeParser.
func (s *Session) ParseNative(ctx context.Context, query string) ([]byte, error) {
	var out string
	err := s.db.QueryRowContext(ctx, "SELECT json_serialize_sql(?::VARCHAR)", s.substituteEnv(query)).Scan(&out)
	if err != nil {
		return nil, fmt.Errorf("json_serialize_sql: %w", err)
	}
	return []byte(out), nil
}

var envPlaceholder = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// substituteEnv replaces {{VAR}} placeholders with environment values.
// Unset variables stay as written so DuckDB reports them in context.
func (s *Session) substituteEnv(query string) string {
	return envPlaceholder.ReplaceAllStringFunc(query, func(match string) string {
		name := match[2 : len(match)-2]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		s.logger.Warn("environment variable not set, leaving placeholder", "var", name)
		return match
	})
}
