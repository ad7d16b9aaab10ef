package widget

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// Data is the mapping produced by window getters and consumed by widgets.
type Data map[string]any

// Manager is the navigation surface available to widgets and handlers during one event.
type Manager interface {
	// Context returns the context of the active intent, or domain.ErrNoContext.
	Context() (*domain.Context, error)
	// Event returns the event being processed.
	Event() domain.Event

	Start(ctx context.Context, group domain.StatesGroup, data map[string]any, mode domain.LaunchMode) error
	SwitchTo(ctx context.Context, state domain.State) error
	Next(ctx context.Context) error
	Back(ctx context.Context) error
	Done(ctx context.Context, result any) error
	Close(ctx context.Context) error
	// Update merges data into the dialog data of the active context and re-renders.
	Update(ctx context.Context, data map[string]any) error
	// Show renders the active window immediately.
	Show(ctx context.Context) error
	// SetShowMode overrides the show mode for the rest of the event.
	SetShowMode(mode domain.ShowMode)
}

// Widget is the capability shared by every rendering unit.
type Widget interface {
	IsVisible(data Data, m Manager) (bool, error)
}

// Text renders a string. Invisible texts render as "".
type Text interface {
	Widget
	RenderText(ctx context.Context, data Data, m Manager) (string, error)
}

// Keyboard renders rows of buttons and consumes callbacks addressed to it.
type Keyboard interface {
	Widget
	RenderKeyboard(ctx context.Context, data Data, m Manager) (domain.Keyboard, error)
	// ProcessCallback handles payload (the callback data without the intent prefix)
	// and reports whether it was consumed.
	ProcessCallback(ctx context.Context, cb *domain.CallbackEvent, payload string, m Manager) (bool, error)
}

// Media renders an attachment descriptor, or nil.
type Media interface {
	Widget
	RenderMedia(ctx context.Context, data Data, m Manager) (*domain.Media, error)
}

// RenderError reports a failure while rendering a widget.
type RenderError struct {
	Widget string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Widget, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateID checks that id can be embedded in callback payloads.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidWidgetID, id)
	}
	return nil
}

func mustID(id string) string {
	if err := ValidateID(id); err != nil {
		panic(err)
	}
	return id
}

// widgetData reads a widget-scoped value from the active context.
func widgetData(m Manager, id string, def any) (any, error) {
	c, err := m.Context()
	if err != nil {
		return def, err
	}
	return c.GetData(id, def, domain.ScopeWidget), nil
}

// setWidgetData stores a widget-scoped value in the active context.
func setWidgetData(m Manager, id string, value any) error {
	c, err := m.Context()
	if err != nil {
		return err
	}
	c.SetData(id, value, domain.ScopeWidget)
	return nil
}
