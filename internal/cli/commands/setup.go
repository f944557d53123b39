package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crabwalk-labs/crabwalk/internal/config"
	"github.com/crabwalk-labs/crabwalk/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Engine *engine.Engine
}

// NewCommandContext loads the command's config and opens the engine.
// The returned cleanup function must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := engine.New(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		_ = eng.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine builds the context for commands that
// never touch the database (lineage, dag).
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	if cfg == nil {
		cfg = &config.Config{
			SQLDir:   config.DefaultSQLDir,
			Database: config.DefaultDatabase,
			Schema:   config.DefaultSchema,
			Dialect:  config.DefaultDialect,
			Output:   config.OutputConfig{Type: config.OutputTable},
		}
	}
	return &CommandContext{
		Cfg:    cfg,
		Logger: config.GetLogger(cmd.Context()),
	}
}

// workspacePath resolves the positional path argument, defaulting to
// the configured sql_dir.
func workspacePath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.SQLDir
}
