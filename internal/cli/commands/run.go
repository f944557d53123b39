package commands

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/crabwalk-labs/crabwalk/internal/engine"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Execute SQL units in dependency order",
		Long: `Execute every SQL unit under the given path (default: the configured
sql_dir) against the DuckDB database.

Units run in dependency order: a unit that reads from another unit's
relation always runs after it. The first failure aborts the run and
completed units keep their artifacts.

With --force the dependency graph is ignored: every file runs exactly
once in lexical path order and per-unit failures are recorded instead
of aborting, which is useful while repairing a broken workspace.`,
		Example: `  # Run the configured workspace
  crabwalk run

  # Run a specific directory or single file
  crabwalk run transforms/
  crabwalk run transforms/orders.sql

  # Keep going past failures
  crabwalk run --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			path := workspacePath(cmdCtx.Cfg, args)

			var summary *engine.Summary
			var runErr error
			if force {
				summary, runErr = cmdCtx.Engine.RunForce(cmd.Context(), path)
			} else {
				summary, runErr = cmdCtx.Engine.Run(cmd.Context(), path)
			}

			renderSummary(cmd.OutOrStdout(), summary)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "run every file regardless of dependency order and failures")
	return cmd
}

func renderSummary(w io.Writer, summary *engine.Summary) {
	if summary == nil || len(summary.Results) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Unit", "Status", "Duration", "Error"})
	for _, r := range summary.Results {
		status := "ok"
		errMsg := ""
		if !r.OK() {
			status = "failed"
			errMsg = r.Err.Error()
		}
		t.AppendRow(table.Row{r.Name, status, r.Duration.Round(timeRounding), errMsg})
	}
	t.AppendFooter(table.Row{"", "", "succeeded", summary.SuccessCount()})
	t.AppendFooter(table.Row{"", "", "failed", summary.FailureCount()})
	t.Render()
}
