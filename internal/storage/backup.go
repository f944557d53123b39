package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Execer runs one SQL statement; satisfied by the engine session.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// Backup exports the database as parquet and uploads every exported
// file under folder/ in the object store. The export happens through
// the live session so in-memory databases back up too.
func Backup(ctx context.Context, db Execer, store ObjectStore, folder string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tmpDir, err := os.MkdirTemp("", "crabwalk-backup-")
	if err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	exportStmt := fmt.Sprintf("EXPORT DATABASE '%s' (FORMAT 'parquet')", escapeSingleQuotes(tmpDir))
	if err := db.Exec(ctx, exportStmt); err != nil {
		return fmt.Errorf("exporting database: %w", err)
	}

	uploaded := 0
	err = filepath.WalkDir(tmpDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(tmpDir, path)
		if err != nil {
			return err
		}
		key := folder + "/" + filepath.ToSlash(rel)

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		if err := store.Put(ctx, key, f); err != nil {
			return err
		}
		logger.Debug("uploaded backup object", "key", key)
		uploaded++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("backup complete", "objects", uploaded, "folder", folder)
	return nil
}

// Restore downloads every object under folder/ and imports the export
// into the current database. The caller decides whether an existing
// database may be replaced before opening the session.
func Restore(ctx context.Context, db Execer, store ObjectStore, folder string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	prefix := folder + "/"
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no backup found under %s", prefix)
	}

	tmpDir, err := os.MkdirTemp("", "crabwalk-restore-")
	if err != nil {
		return fmt.Errorf("creating import directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for _, key := range keys {
		rel := strings.TrimPrefix(key, prefix)
		if rel == "" || strings.Contains(rel, "..") {
			continue
		}
		dest := filepath.Join(tmpDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := download(ctx, store, key, dest); err != nil {
			return err
		}
		logger.Debug("downloaded backup object", "key", key)
	}

	importStmt := fmt.Sprintf("IMPORT DATABASE '%s'", escapeSingleQuotes(tmpDir))
	if err := db.Exec(ctx, importStmt); err != nil {
		return fmt.Errorf("importing database: %w", err)
	}

	logger.Info("restore complete", "objects", len(keys), "folder", folder)
	return nil
}

func download(ctx context.Context, store ObjectStore, key, dest string) error {
	body, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := f.ReadFrom(body); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
