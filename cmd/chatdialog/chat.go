package main

import (
	"os"

	"github.com/aretw0/chatdialog"
	"github.com/aretw0/chatdialog/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [dialogs.yaml]",
	Short: "Talk to the dialogs in the terminal",
	Long: `Starts the entry dialog and shows every screen with numbered buttons.
Type a number or a button label to press it, any other text is sent as a message.
Type exit or quit to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("dialogs") && len(args) > 0 {
			cfg.Dialogs = args[0]
		}
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")

		return cli.RunChat(cmd.Context(), cli.ChatOptions{
			Config:   cfg,
			Input:    os.Stdin,
			Output:   os.Stdout,
			Headless: headless,
			JSON:     jsonMode,
			Version:  chatdialog.Version,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("entry", "", "Dialog group to start (default: first root dialog)")
	chatCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, prompts or markdown)")
	chatCmd.Flags().Bool("json", false, "Exchange JSON lines instead of text (implies headless)")
}
