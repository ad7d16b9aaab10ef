package main

import (
	"fmt"
	"os"

	"github.com/aretw0/chatdialog/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatdialog",
	Short: "chatdialog runs button-driven chat dialogs",
	Long: `chatdialog loads dialogs described in YAML and runs them as a stack of
windows: in the terminal, behind an HTTP chat simulator or as MCP tools.

Every flag can also be set in chatdialog.yaml or through CHATDIALOG_* variables,
e.g. CHATDIALOG_STORAGE_BACKEND=redis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./chatdialog.yaml when present)")
	flags.String("env-file", ".env", "Env file loaded before reading the configuration")
	flags.String("dialogs", "dialogs.yaml", "YAML file with the dialog definitions")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.String("storage", cli.BackendMemory, "Storage backend: memory, file, redis, sqlite or postgres")
	flags.String("dsn", "", "Database DSN for sqlite and postgres, state directory for file")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis backend")
}

// loadConfig reads the env file, the config file, the environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (cli.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := cli.LoadDotEnv(envFile); err != nil {
		return cli.Config{}, err
	}
	path, _ := cmd.Flags().GetString("config")
	return cli.LoadConfig(path, cmd.Flags())
}
