package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/chatdialog"
	"github.com/aretw0/chatdialog/internal/logging"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/loader"
	"github.com/aretw0/chatdialog/pkg/observability"
	"github.com/aretw0/chatdialog/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// App is an engine wired from configuration.
type App struct {
	Engine   *chatdialog.Engine
	Registry *dialog.Registry
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	backend  *Backend
}

// Close releases the storage of the app.
func (a *App) Close() error {
	if a.backend == nil {
		return nil
	}
	return a.backend.Close()
}

// CreateLogger configures the application logger from cfg.
// It writes to Stderr to keep the chat and the MCP stdio stream clean on Stdout.
func CreateLogger(cfg LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(os.Stderr, level, cfg.JSON), nil
}

// NewApp loads the dialogs of cfg and builds an engine delivering through transport.
// Lifecycle metrics are registered on reg when it is not nil.
func NewApp(cfg Config, transport ports.Transport, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	registry, err := loader.New().LoadRegistry(cfg.Dialogs)
	if err != nil {
		return nil, err
	}

	hooks := observability.Logging(logger)
	var metrics *observability.Metrics
	if reg != nil {
		metrics, err = observability.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		hooks = observability.Combine(hooks, metrics.Hooks())
	}

	backend, err := OpenBackend(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	engine, err := chatdialog.New(registry, transport,
		chatdialog.WithStorage(backend.Storage),
		chatdialog.WithStorageMiddleware(backend.Middlewares...),
		chatdialog.WithLocker(backend.Locker),
		chatdialog.WithLockTTL(cfg.Storage.LockTTL),
		chatdialog.WithLifecycleHooks(hooks),
		chatdialog.WithLogger(logger),
	)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	return &App{
		Engine:   engine,
		Registry: registry,
		Metrics:  metrics,
		Logger:   logger,
		backend:  backend,
	}, nil
}

// EntryGroup picks the dialog a chat starts with: the requested one when set,
// else the first root dialog, else the first registered group.
func EntryGroup(registry *dialog.Registry, requested string) (domain.StatesGroup, error) {
	if requested != "" {
		group := domain.StatesGroup(requested)
		if _, err := registry.Find(group); err != nil {
			return "", err
		}
		return group, nil
	}
	groups := registry.Groups()
	if len(groups) == 0 {
		return "", fmt.Errorf("no dialogs registered")
	}
	for _, group := range groups {
		if d, err := registry.Find(group); err == nil && d.LaunchMode() == domain.LaunchRoot {
			return group, nil
		}
	}
	return groups[0], nil
}
