package commands

import (
	"github.com/spf13/cobra"

	"github.com/crabwalk-labs/crabwalk/internal/storage"
)

// defaultDBFolder is the object-store prefix used when s3.db_folder is
// not configured.
const defaultDBFolder = "crabwalk"

// NewBackupCommand creates the backup command.
func NewBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the database to S3",
		Long: `Export the database as parquet and upload it to the configured S3
bucket under s3.db_folder. Requires the s3 section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := storage.NewS3Store(cmdCtx.Cfg.S3)
			if err != nil {
				return err
			}

			return storage.Backup(cmd.Context(), cmdCtx.Engine.Session(), store, dbFolder(cmdCtx), cmdCtx.Logger)
		},
	}
}

func dbFolder(cmdCtx *CommandContext) string {
	if cmdCtx.Cfg.S3 != nil && cmdCtx.Cfg.S3.DBFolder != "" {
		return cmdCtx.Cfg.S3.DBFolder
	}
	return defaultDBFolder
}
