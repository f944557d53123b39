package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/crabwalk-labs/crabwalk/internal/model"
)

const timeRounding = time.Millisecond

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dag [path]",
		Short: "Show the dependency graph",
		Long: `Display the unit dependency graph grouped by execution level.
Level 0 units have no dependencies; every other level depends only on
earlier levels. No database is opened.`,
		Example: `  # Show the graph for the configured workspace
  crabwalk dag

  # Show the graph for a directory
  crabwalk dag transforms/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)

			scanner := model.NewScanner(cmdCtx.Cfg.Dialect, nil, cmdCtx.Logger)
			models, err := scanner.Scan(cmd.Context(), workspacePath(cmdCtx.Cfg, args))
			if err != nil {
				return err
			}

			graph := model.BuildGraph(models)
			levels, err := graph.ExecutionLevels()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d units, %d edges\n", graph.NodeCount(), graph.EdgeCount())
			if len(models) == 0 {
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Level", "Unit", "Depends on"})
			for level, names := range levels {
				for _, name := range names {
					t.AppendRow(table.Row{level, name, strings.Join(graph.Parents(name), ", ")})
				}
			}
			t.Render()
			return nil
		},
	}
}
