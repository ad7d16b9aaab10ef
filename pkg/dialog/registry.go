package dialog

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// Registry resolves dialogs by states group.
type Registry struct {
	mu      sync.RWMutex
	dialogs map[domain.StatesGroup]*Dialog
}

// NewRegistry creates a registry holding dialogs.
func NewRegistry(dialogs ...*Dialog) (*Registry, error) {
	r := &Registry{
		dialogs: make(map[domain.StatesGroup]*Dialog),
	}
	for _, d := range dialogs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a dialog. A group can only be registered once.
func (r *Registry) Register(d *Dialog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dialogs[d.Group()]; exists {
		return fmt.Errorf("dialog %q already registered", d.Group())
	}
	r.dialogs[d.Group()] = d
	return nil
}

// Find returns the dialog of group.
func (r *Registry) Find(group domain.StatesGroup) (*Dialog, error) {
	r.mu.RLock()
	d, ok := r.dialogs[group]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnregisteredDialog, group)
	}
	return d, nil
}

// FindState returns the dialog and window registered for state.
func (r *Registry) FindState(state domain.State) (*Dialog, *Window, error) {
	d, err := r.Find(domain.StatesGroup(state.Group()))
	if err != nil {
		return nil, nil, err
	}
	w, err := d.Window(state)
	if err != nil {
		return nil, nil, err
	}
	return d, w, nil
}

// Groups lists the registered groups in lexical order.
func (r *Registry) Groups() []domain.StatesGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]domain.StatesGroup, 0, len(r.dialogs))
	for g := range r.dialogs {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	return groups
}
