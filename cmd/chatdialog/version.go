package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatdialog"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of chatdialog",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "chatdialog version %s\n", strings.TrimSpace(chatdialog.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
