// Package file persists navigation state as JSON documents on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

var _ ports.Storage = (*Store)(nil)

const ext = ".json"

// Store implements ports.Storage using the local filesystem.
// Stacks live under <base>/stacks and contexts under <base>/contexts/<chat>.
// Every write goes through a temp file and a rename.
type Store struct {
	BasePath string

	mu sync.RWMutex
}

// New creates a new Store rooted at basePath.
// If basePath is empty, it defaults to ".chatdialog/state".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".chatdialog", "state")
	}
	return &Store{BasePath: basePath}
}

func segment(s string) string {
	return url.PathEscape(s)
}

func (s *Store) stackPath(key domain.StackKey) string {
	return filepath.Join(s.BasePath, "stacks", segment(key.String())+ext)
}

func (s *Store) contextPath(chat domain.ChatKey, intentID string) string {
	return filepath.Join(s.BasePath, "contexts", segment(chat.String()), segment(intentID)+ext)
}

// LoadStack reads the stack of key or returns a fresh one.
func (s *Store) LoadStack(ctx context.Context, key domain.StackKey) (*domain.Stack, error) {
	var stack domain.Stack
	found, err := s.read(s.stackPath(key), &stack)
	if err != nil {
		return nil, fmt.Errorf("failed to load stack %s: %w", key, err)
	}
	if !found {
		return domain.NewStack(key.StackID), nil
	}
	return &stack, nil
}

// SaveStack writes the stack of key.
func (s *Store) SaveStack(ctx context.Context, key domain.StackKey, stack *domain.Stack) error {
	if err := s.write(s.stackPath(key), stack); err != nil {
		return fmt.Errorf("failed to save stack %s: %w", key, err)
	}
	return nil
}

// LoadContext reads the context of intentID in chat.
func (s *Store) LoadContext(ctx context.Context, chat domain.ChatKey, intentID string) (*domain.Context, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: empty intent id", domain.ErrUnknownIntent)
	}
	var c domain.Context
	found, err := s.read(s.contextPath(chat, intentID), &c)
	if err != nil {
		return nil, fmt.Errorf("failed to load context %s: %w", intentID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownIntent, intentID)
	}
	return &c, nil
}

// SaveContext writes c under its intent id.
func (s *Store) SaveContext(ctx context.Context, chat domain.ChatKey, c *domain.Context) error {
	if c.IntentID == "" {
		return fmt.Errorf("context has no intent id")
	}
	if err := s.write(s.contextPath(chat, c.IntentID), c); err != nil {
		return fmt.Errorf("failed to save context %s: %w", c.IntentID, err)
	}
	return nil
}

// RemoveContext deletes the context file. A missing file is not an error.
func (s *Store) RemoveContext(ctx context.Context, chat domain.ChatKey, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.contextPath(chat, intentID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete context %s: %w", intentID, err)
	}
	return nil
}

// Stacks lists the keys of every stored stack, as rendered by StackKey.String.
func (s *Store) Stacks(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.BasePath, "stacks"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list stacks: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) || strings.HasPrefix(name, "tmp-") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Store) read(path string, v any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("corrupt document %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// write replaces path atomically: temp file in the same directory, fsync, rename.
func (s *Store) write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
