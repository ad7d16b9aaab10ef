// Package sql implements ports.Storage on top of database/sql with SQLite and Postgres drivers.
package sql

import (
	"context"
	backend "database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/aretw0/chatdialog/internal/logging"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connection pool configuration for Postgres.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute

	// DefaultDirPermissions is used when creating the SQLite database directory.
	DefaultDirPermissions = 0755
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

var _ ports.Storage = (*Store)(nil)

// Store implements ports.Storage using a relational database.
type Store struct {
	db      *backend.DB
	dialect Dialect
	logger  *slog.Logger
}

// Opts holds the constructor configuration.
type Opts struct {
	DSN     string
	Dialect Dialect
	Logger  *slog.Logger
}

// Option configures the Store.
type Option func(*Opts)

// WithDSN sets the data source name.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithDialect forces a dialect instead of detecting it from the DSN.
func WithDialect(d Dialect) Option {
	return func(o *Opts) {
		o.Dialect = d
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opts) {
		o.Logger = logger
	}
}

// Open connects to the database and applies the embedded schema.
func Open(opts ...Option) (*Store, error) {
	cfg := Opts{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}
	if cfg.Dialect == "" {
		cfg.Dialect = DetectDialect(cfg.DSN)
	}
	cfg.Logger.Debug("Opening SQL storage", "dialect", cfg.Dialect)

	if cfg.Dialect == SQLite {
		dir := filepath.Dir(cfg.DSN)
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := backend.Open(string(cfg.Dialect), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Dialect, err)
	}
	if cfg.Dialect == Postgres {
		db.SetMaxOpenConns(DefaultMaxOpenConns)
		db.SetMaxIdleConns(DefaultMaxIdleConns)
		db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	}

	store, err := NewFromDB(context.Background(), db, cfg.Dialect, cfg.Logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewFromDB wraps an existing connection and applies the schema.
func NewFromDB(ctx context.Context, db *backend.DB, dialect Dialect, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%s ping failed: %w", dialect, err)
	}

	schema := sqliteSchema
	if dialect == Postgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Debug("SQL schema applied", "dialect", dialect)

	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

// LoadStack retrieves the stack or returns a new empty one.
func (s *Store) LoadStack(ctx context.Context, key domain.StackKey) (*domain.Stack, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT data FROM dialog_stacks WHERE stack_key = ?`),
		key.String(),
	).Scan(&data)
	if errors.Is(err, backend.ErrNoRows) {
		return domain.NewStack(key.StackID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query stack %s: %w", key, err)
	}

	var stack domain.Stack
	if err := json.Unmarshal([]byte(data), &stack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stack: %w", err)
	}
	if stack.Intents == nil {
		stack.Intents = []string{}
	}
	return &stack, nil
}

// SaveStack upserts the stack.
func (s *Store) SaveStack(ctx context.Context, key domain.StackKey, stack *domain.Stack) error {
	data, err := json.Marshal(stack)
	if err != nil {
		return fmt.Errorf("failed to marshal stack: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO dialog_stacks (stack_key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (stack_key)
		DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`),
		key.String(), string(data), time.Now().UTC(),
	)
	if err != nil {
		s.logger.Error("SaveStack failed", "stack", key.String(), "err", err)
		return fmt.Errorf("failed to save stack %s: %w", key, err)
	}
	s.logger.Debug("SaveStack succeeded", "stack", key.String(), "depth", stack.Depth())
	return nil
}

// LoadContext retrieves a context.
func (s *Store) LoadContext(ctx context.Context, chat domain.ChatKey, intentID string) (*domain.Context, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT data FROM dialog_contexts WHERE chat_key = ? AND intent_id = ?`),
		chat.String(), intentID,
	).Scan(&data)
	if errors.Is(err, backend.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownIntent, intentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query context %s: %w", intentID, err)
	}

	var c domain.Context
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	if c.DialogData == nil {
		c.DialogData = make(map[string]any)
	}
	if c.WidgetData == nil {
		c.WidgetData = make(map[string]any)
	}
	return &c, nil
}

// SaveContext upserts a context.
func (s *Store) SaveContext(ctx context.Context, chat domain.ChatKey, c *domain.Context) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO dialog_contexts (chat_key, intent_id, stack_id, data, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (chat_key, intent_id)
		DO UPDATE SET
			stack_id = EXCLUDED.stack_id,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`),
		chat.String(), c.IntentID, c.StackID, string(data), time.Now().UTC(),
	)
	if err != nil {
		s.logger.Error("SaveContext failed", "intent_id", c.IntentID, "err", err)
		return fmt.Errorf("failed to save context %s: %w", c.IntentID, err)
	}
	return nil
}

// RemoveContext deletes a context.
func (s *Store) RemoveContext(ctx context.Context, chat domain.ChatKey, intentID string) error {
	_, err := s.db.ExecContext(ctx,
		s.dialect.rebind(`DELETE FROM dialog_contexts WHERE chat_key = ? AND intent_id = ?`),
		chat.String(), intentID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove context %s: %w", intentID, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
