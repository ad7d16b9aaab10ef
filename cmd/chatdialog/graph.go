package main

import (
	"fmt"
	"os"

	"github.com/aretw0/chatdialog/internal/presentation/graph"
	"github.com/aretw0/chatdialog/pkg/loader"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [dialogs.yaml]",
	Short: "Print the dialogs as a Mermaid flowchart",
	Long: `Draws every dialog as a subgraph of its windows and every navigation
button or input action as an arrow. Use --current and --visited to highlight states.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Dialogs
		if !cmd.Flags().Changed("dialogs") && len(args) > 0 {
			path = args[0]
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open dialogs: %w", err)
		}
		defer f.Close()

		file, err := loader.Parse(f)
		if err != nil {
			return err
		}

		current, _ := cmd.Flags().GetString("current")
		visited, _ := cmd.Flags().GetStringSlice("visited")
		var overlay *graph.Overlay
		if current != "" || len(visited) > 0 {
			overlay = &graph.Overlay{Current: current, Visited: visited}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(file, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("current", "", "State to highlight as current (group:window)")
	graphCmd.Flags().StringSlice("visited", nil, "States to highlight as visited")
}
