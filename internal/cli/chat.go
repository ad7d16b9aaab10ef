package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/chatdialog"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
)

// ChatOptions configures a terminal conversation.
type ChatOptions struct {
	Config   Config
	Input    io.Reader
	Output   io.Writer
	Headless bool
	JSON     bool
	Version  string
}

// RunChat loads the dialogs and talks to them on the terminal until the
// conversation ends or the input is exhausted.
func RunChat(ctx context.Context, opts ChatOptions) error {
	logger, err := CreateLogger(opts.Config.Log)
	if err != nil {
		return err
	}

	view := memory.NewTransport()
	app, err := NewApp(opts.Config, view, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Close storage failed", "err", err)
		}
	}()

	entry, err := EntryGroup(app.Registry, opts.Config.Entry)
	if err != nil {
		return fmt.Errorf("entry dialog: %w", err)
	}

	headless := opts.Headless || opts.JSON
	if !headless && IsTerminal(opts.Output) {
		PrintBanner(opts.Output, opts.Version)
	}

	r := chatdialog.NewRunner()
	r.Input = opts.Input
	r.Output = opts.Output
	r.Headless = headless
	r.JSON = opts.JSON
	if !headless {
		r.Renderer = NewRenderer(opts.Output)
	}

	logger.Info("Chat started", "dialogs", opts.Config.Dialogs, "entry", entry, "storage", opts.Config.Storage.Backend)
	return r.Run(ctx, app.Engine, view, entry)
}
