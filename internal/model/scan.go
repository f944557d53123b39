package model

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crabwalk-labs/crabwalk/pkg/sqlparse"
)

// Scanner discovers models under a workspace path.
type Scanner struct {
	dialect string
	native  sqlparse.NativeParser
	logger  *slog.Logger
}

// NewScanner creates a scanner. native may be nil; the grammar parser
// then handles everything.
func NewScanner(dialect string, native sqlparse.NativeParser, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{dialect: dialect, native: native, logger: logger}
}

// Scan walks root and returns every .sql file as a model, sorted by
// path. root may also be a single .sql file. Symlinks are followed.
// Python files are skipped with a warning; two files sharing a stem
// fail with *DuplicateUnitError.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*Model, error) {
	paths, err := s.ListSQLFiles(root)
	if err != nil {
		return nil, err
	}

	models := make([]*Model, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		m, err := s.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[m.Name]; ok {
			return nil, &DuplicateUnitError{Name: m.Name, Paths: [2]string{prev, path}}
		}
		seen[m.Name] = path
		models = append(models, m)
	}
	return models, nil
}

// collectPaths gathers .sql paths recursively, following directory
// symlinks. os.Stat resolves links so a linked tree scans like a real
// one. visited holds the resolved ancestor directories; a symlink back
// into one of them is a loop.
func (s *Scanner) collectPaths(dir string, visited map[string]struct{}) ([]string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	if _, ok := visited[resolved]; ok {
		return nil, fmt.Errorf("symlink loop detected at %s", dir)
	}
	visited[resolved] = struct{}{}
	defer delete(visited, resolved)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.IsDir() {
			sub, err := s.collectPaths(path, visited)
			if err != nil {
				return nil, err
			}
			paths = append(paths, sub...)
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".sql":
			paths = append(paths, path)
		case ".py":
			s.logger.Warn("python units are not supported, skipping", "path", path)
		}
	}
	return paths, nil
}

// ListSQLFiles returns every .sql path under root in lexical order.
// Force mode uses this to enumerate files without failing the whole
// batch on one bad unit. A single .sql file root lists itself.
func (s *Scanner) ListSQLFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading workspace %s: %w", root, err)
	}
	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(root), ".sql") {
			return nil, fmt.Errorf("%s is not a .sql file", root)
		}
		return []string{root}, nil
	}
	paths, err := s.collectPaths(root, make(map[string]struct{}))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFile reads and parses one file into a model.
func (s *Scanner) LoadFile(ctx context.Context, path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	raw := string(data)

	stmts, err := sqlparse.ParseStatements(ctx, raw, s.dialect, s.native, s.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &Model{
		Name:       name,
		Path:       path,
		RawSQL:     raw,
		Statements: stmts,
		Deps:       computeDeps(name, stmts),
		Output:     extractInlineOutput(raw, s.logger.With("path", path)),
	}, nil
}
