package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crabwalk-labs/crabwalk/internal/lineage"
	"github.com/crabwalk-labs/crabwalk/internal/model"
)

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "lineage [path]",
		Short: "Generate lineage diagrams without executing",
		Long: `Scan the workspace and write a mermaid lineage diagram (lineage.mmd)
next to the SQL files. With --html a self-contained lineage.html page
is written as well. Nothing is executed and no database is opened.`,
		Example: `  crabwalk lineage
  crabwalk lineage transforms/ --html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			root := workspacePath(cmdCtx.Cfg, args)

			scanner := model.NewScanner(cmdCtx.Cfg.Dialect, nil, cmdCtx.Logger)
			models, err := scanner.Scan(cmd.Context(), root)
			if err != nil {
				return err
			}

			dir := root
			if info, err := os.Stat(root); err == nil && !info.IsDir() {
				dir = filepath.Dir(root)
			}

			if err := lineage.WriteMermaid(dir, models); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filepath.Join(dir, lineage.MermaidFileName))

			if html {
				path := filepath.Join(dir, lineage.HTMLFileName)
				if err := lineage.WriteHTML(path, models); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "also write a self-contained HTML lineage page")
	return cmd
}
