package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/chatdialog"
	"github.com/aretw0/chatdialog/internal/cli"
	"github.com/aretw0/chatdialog/pkg/adapters/mcp"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the dialogs as MCP tools, so an agent can start dialogs, send
messages and press buttons in simulated chats.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := cli.CreateLogger(cfg.Log)
		if err != nil {
			return err
		}

		view := memory.NewTransport()
		app, err := cli.NewApp(cfg, view, logger, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warn("Close storage failed", "err", err)
			}
		}()

		srv := mcp.NewServer(app.Engine, view, chatdialog.Version, mcp.WithLogger(logger))

		switch cfg.MCP.Transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting chatdialog MCP Server (Stdio)")
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		case "sse":
			logger.Info("Starting chatdialog MCP Server (SSE)", "port", cfg.MCP.Port)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, cfg.MCP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("mcp server: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.MCP.Transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("sse-port", 8081, "Port to listen on (only for SSE)")
}
