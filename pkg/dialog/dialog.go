package dialog

import (
	"context"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
)

// Reserved data keys always available to widgets.
const (
	KeyDialogData = "dialog_data"
	KeyStartData  = "start_data"
)

// StartHook runs after the dialog was pushed, before its first render.
type StartHook func(ctx context.Context, startData map[string]any, m widget.Manager) error

// CloseHook runs when the dialog finishes through Done, before it is popped.
type CloseHook func(ctx context.Context, result any, m widget.Manager) error

// ResultHook runs on the parent dialog when a child finished with a result.
type ResultHook func(ctx context.Context, startData map[string]any, result any, m widget.Manager) error

// Dialog is the ordered set of windows of one states group.
type Dialog struct {
	group   domain.StatesGroup
	windows []*Window
	index   map[domain.State]int

	getter          Getter
	launchMode      domain.LaunchMode
	onStart         StartHook
	onClose         CloseHook
	onProcessResult ResultHook
}

// Option configures a Dialog.
type Option func(*Dialog)

// WithGetter sets a dialog-level getter merged below every window getter.
func WithGetter(g Getter) Option {
	return func(d *Dialog) {
		d.getter = g
	}
}

// WithLaunchMode sets the mode used when a start request does not name one.
func WithLaunchMode(mode domain.LaunchMode) Option {
	return func(d *Dialog) {
		d.launchMode = mode
	}
}

// WithOnStart sets the start hook.
func WithOnStart(h StartHook) Option {
	return func(d *Dialog) {
		d.onStart = h
	}
}

// WithOnClose sets the close hook.
func WithOnClose(h CloseHook) Option {
	return func(d *Dialog) {
		d.onClose = h
	}
}

// WithOnProcessResult sets the hook receiving results of child dialogs.
func WithOnProcessResult(h ResultHook) Option {
	return func(d *Dialog) {
		d.onProcessResult = h
	}
}

// New builds a dialog. Windows must share one states group and have distinct states.
func New(windows []*Window, opts ...Option) (*Dialog, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("dialog has no windows")
	}
	for i, w := range windows {
		if w == nil {
			return nil, fmt.Errorf("window %d is nil", i)
		}
	}
	d := &Dialog{
		group:      domain.StatesGroup(windows[0].State.Group()),
		windows:    windows,
		index:      make(map[domain.State]int, len(windows)),
		launchMode: domain.LaunchStandard,
	}
	for i, w := range windows {
		if !w.State.Valid() {
			return nil, fmt.Errorf("window %d: invalid state %q", i, w.State)
		}
		if domain.StatesGroup(w.State.Group()) != d.group {
			return nil, fmt.Errorf("window %q does not belong to group %q", w.State, d.group)
		}
		if _, dup := d.index[w.State]; dup {
			return nil, fmt.Errorf("duplicate window %q", w.State)
		}
		d.index[w.State] = i
	}
	for _, opt := range opts {
		opt(d)
	}
	if !d.launchMode.Valid() {
		return nil, fmt.Errorf("dialog %q: unknown launch mode %q", d.group, d.launchMode)
	}
	return d, nil
}

// MustNew is like New but panics on error.
func MustNew(windows []*Window, opts ...Option) *Dialog {
	d, err := New(windows, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Group returns the states group identifying the dialog.
func (d *Dialog) Group() domain.StatesGroup {
	return d.group
}

// LaunchMode returns the configured launch mode.
func (d *Dialog) LaunchMode() domain.LaunchMode {
	return d.launchMode
}

// Windows returns the windows in declaration order.
func (d *Dialog) Windows() []*Window {
	return append([]*Window(nil), d.windows...)
}

// First returns the window shown when the dialog starts.
func (d *Dialog) First() *Window {
	return d.windows[0]
}

// Window returns the window registered for state.
func (d *Dialog) Window(state domain.State) (*Window, error) {
	i, ok := d.index[state]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnregisteredWindow, state)
	}
	return d.windows[i], nil
}

// Next returns the window declared after state.
func (d *Dialog) Next(state domain.State) (*Window, error) {
	return d.adjacent(state, 1)
}

// Prev returns the window declared before state.
func (d *Dialog) Prev(state domain.State) (*Window, error) {
	return d.adjacent(state, -1)
}

func (d *Dialog) adjacent(state domain.State, step int) (*Window, error) {
	i, ok := d.index[state]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnregisteredWindow, state)
	}
	j := i + step
	if j < 0 || j >= len(d.windows) {
		return nil, fmt.Errorf("%w: no window %+d from %s", domain.ErrNavigation, step, state)
	}
	return d.windows[j], nil
}

// OnStart runs the start hook, if any.
func (d *Dialog) OnStart(ctx context.Context, startData map[string]any, m widget.Manager) error {
	if d.onStart == nil {
		return nil
	}
	return d.onStart(ctx, startData, m)
}

// OnClose runs the close hook, if any.
func (d *Dialog) OnClose(ctx context.Context, result any, m widget.Manager) error {
	if d.onClose == nil {
		return nil
	}
	return d.onClose(ctx, result, m)
}

// OnProcessResult runs the child result hook, if any.
func (d *Dialog) OnProcessResult(ctx context.Context, startData map[string]any, result any, m widget.Manager) error {
	if d.onProcessResult == nil {
		return nil
	}
	return d.onProcessResult(ctx, startData, result, m)
}

// Data assembles the render data of w: the context mappings, then the dialog getter,
// then the window getter. Later sources override earlier keys.
func (d *Dialog) Data(ctx context.Context, w *Window, m widget.Manager) (widget.Data, error) {
	c, err := m.Context()
	if err != nil {
		return nil, err
	}
	data := widget.Data{
		KeyDialogData: c.DialogData,
		KeyStartData:  c.StartData,
	}
	for _, g := range []Getter{d.getter, w.Getter} {
		if g == nil {
			continue
		}
		extra, err := g(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("getter of %s: %w", w.State, err)
		}
		for k, v := range extra {
			data[k] = v
		}
	}
	return data, nil
}

// Render renders the window of the active context for chat.
// Callback payloads are prefixed with the active intent id.
func (d *Dialog) Render(ctx context.Context, chat domain.ChatKey, m widget.Manager) (*domain.NewMessage, error) {
	c, err := m.Context()
	if err != nil {
		return nil, err
	}
	w, err := d.Window(c.State)
	if err != nil {
		return nil, err
	}
	data, err := d.Data(ctx, w, m)
	if err != nil {
		return nil, err
	}

	msg := &domain.NewMessage{
		Chat:              chat,
		ParseMode:         w.ParseMode,
		DisableWebPreview: w.DisableWebPreview,
	}
	if w.Text != nil {
		if msg.Text, err = w.Text.RenderText(ctx, data, m); err != nil {
			return nil, err
		}
	}
	if w.Keyboard != nil {
		kb, err := w.Keyboard.RenderKeyboard(ctx, data, m)
		if err != nil {
			return nil, err
		}
		msg.Keyboard = prefixKeyboard(kb, c.IntentID)
	}
	if w.Media != nil {
		if msg.Media, err = w.Media.RenderMedia(ctx, data, m); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// ProcessCallback dispatches a widget payload to the keyboard of the active window.
func (d *Dialog) ProcessCallback(ctx context.Context, cb *domain.CallbackEvent, payload string, m widget.Manager) (bool, error) {
	w, err := d.active(m)
	if err != nil {
		return false, err
	}
	if w.Keyboard == nil {
		return false, nil
	}
	return w.Keyboard.ProcessCallback(ctx, cb, payload, m)
}

// ProcessMessage passes an inbound message to the handler of the active window.
func (d *Dialog) ProcessMessage(ctx context.Context, msg *domain.MessageEvent, m widget.Manager) (bool, error) {
	w, err := d.active(m)
	if err != nil {
		return false, err
	}
	if w.OnMessage == nil {
		return false, nil
	}
	return true, w.OnMessage(ctx, msg, m)
}

func (d *Dialog) active(m widget.Manager) (*Window, error) {
	c, err := m.Context()
	if err != nil {
		return nil, err
	}
	return d.Window(c.State)
}

func prefixKeyboard(kb domain.Keyboard, intentID string) domain.Keyboard {
	if kb == nil {
		return nil
	}
	out := kb.Clone()
	for _, row := range out {
		for j := range row {
			if row[j].CallbackData != "" {
				row[j].CallbackData = EncodeCallback(intentID, row[j].CallbackData)
			}
		}
	}
	return out
}
