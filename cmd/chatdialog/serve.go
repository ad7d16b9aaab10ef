package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/chatdialog"
	"github.com/aretw0/chatdialog/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat simulator",
	Long: `Serves the dialogs over a JSON API: start dialogs, send messages and press
buttons per chat and user, read the chats back or follow them over SSE.
Prometheus metrics are exposed on /metrics unless --metrics=false.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := cli.CreateLogger(cfg.Log)
		if err != nil {
			return err
		}

		sim, err := cli.NewSimulator(cfg, logger, chatdialog.Version)
		if err != nil {
			return err
		}
		defer func() {
			if err := sim.App.Close(); err != nil {
				logger.Warn("Close storage failed", "err", err)
			}
		}()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:           sim.Handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting chatdialog server", "address", srv.Addr, "dialogs", cfg.Dialogs, "storage", cfg.Storage.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bot-id", "http", "Bot id of the simulated chats")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}
