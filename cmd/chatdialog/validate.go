package main

import (
	"fmt"

	"github.com/aretw0/chatdialog/pkg/loader"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dialogs.yaml]",
	Short: "Check a dialogs file for consistency",
	Long: `Loads the dialogs file and reports unknown fields, unknown widget types,
transitions to missing windows and dialogs, and duplicated widget ids.`,
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

		registry, err := loader.New().LoadRegistry(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, group := range registry.Groups() {
			d, err := registry.Find(group)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%d windows)\n", group, len(d.Windows()))
		}
		fmt.Fprintln(out, "Dialogs are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
