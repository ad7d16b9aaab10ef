package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/chatdialog/pkg/adapters/file"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/adapters/redis"
	"github.com/aretw0/chatdialog/pkg/adapters/sql"
	"github.com/aretw0/chatdialog/pkg/persistence/middleware"
	"github.com/aretw0/chatdialog/pkg/ports"
	"github.com/aretw0/chatdialog/pkg/session"
)

// Backend is an opened storage with its locker and middlewares.
type Backend struct {
	Storage     ports.Storage
	Locker      ports.DistributedLocker
	Middlewares []middleware.Middleware
	closers     []func() error
}

// Close releases the connections of the backend.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenBackend opens the storage selected by cfg.
// Redis backends lock through Redis, the others in process.
func OpenBackend(cfg StorageConfig, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Locker: session.NewLocalLocker()}
	switch cfg.Backend {
	case "", BackendMemory:
		b.Storage = memory.NewStore()
	case BackendFile:
		// The dsn is the state directory.
		b.Storage = file.New(cfg.DSN)
	case BackendRedis:
		store := redis.New(cfg.Address, cfg.Password, cfg.DB,
			redis.WithPrefix(cfg.Prefix),
			redis.WithTTL(cfg.TTL),
		)
		b.Storage = store
		b.Locker = redis.NewLocker(store.Client(), cfg.Prefix)
		b.closers = append(b.closers, store.Close)
	case BackendSQLite, BackendPostgres:
		dialect := sql.SQLite
		if cfg.Backend == BackendPostgres {
			dialect = sql.Postgres
		}
		store, err := sql.Open(sql.WithDSN(cfg.DSN), sql.WithDialect(dialect), sql.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		b.Storage = store
		b.closers = append(b.closers, store.Close)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if cfg.EncryptionKey != "" {
		mw, err := encryption(cfg.EncryptionKey, cfg.FallbackKeys)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Middlewares = append(b.Middlewares, mw)
	}
	logger.Debug("Storage opened", "backend", cfg.Backend, "encrypted", cfg.EncryptionKey != "")
	return b, nil
}

func encryption(active string, fallback []string) (middleware.Middleware, error) {
	key, err := decodeKey(active)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	config := middleware.EncryptionConfig{ActiveKey: key}
	for i, s := range fallback {
		k, err := decodeKey(s)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		config.FallbackKeys = append(config.FallbackKeys, k)
	}
	return middleware.NewEncryptionMiddleware(config), nil
}

// decodeKey reads a base64 encoded AES-256 key.
func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
