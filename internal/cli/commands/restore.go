package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crabwalk-labs/crabwalk/internal/storage"
)

// NewRestoreCommand creates the restore command.
func NewRestoreCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the database from S3",
		Long: `Download the most recent backup from the configured S3 bucket and
import it into the database. An existing database file is never
replaced unless --overwrite is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := NewCommandContextWithoutEngine(cmd).Cfg

			if cfg.Database != ":memory:" {
				if _, err := os.Stat(cfg.Database); err == nil {
					if !overwrite {
						return fmt.Errorf("database %s already exists, use --overwrite to replace it", cfg.Database)
					}
					if err := os.Remove(cfg.Database); err != nil {
						return fmt.Errorf("removing existing database: %w", err)
					}
				}
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := storage.NewS3Store(cmdCtx.Cfg.S3)
			if err != nil {
				return err
			}

			return storage.Restore(cmd.Context(), cmdCtx.Engine.Session(), store, dbFolder(cmdCtx), cmdCtx.Logger)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing database file")
	return cmd
}
