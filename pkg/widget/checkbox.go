package widget

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// OnStateChanged is called after a checkbox or radio changed its widget data.
type OnStateChanged func(ctx context.Context, id string, m Manager) error

// CheckboxKeyboard is a button toggling a boolean stored in the widget data under its id.
type CheckboxKeyboard struct {
	id       string
	label    *CaseText
	def      bool
	onChange OnStateChanged
	when     Predicate
}

// Checkbox creates a toggle. It panics when id is not a valid widget id.
func Checkbox(checked, unchecked Text, id string, def bool, onChange OnStateChanged) *CheckboxKeyboard {
	cb := &CheckboxKeyboard{id: mustID(id), def: def, onChange: onChange}
	cb.label = Case(func(_ Data, _ *CaseText, m Manager) (any, error) {
		return cb.Checked(m)
	}, map[any]Text{true: checked, false: unchecked})
	return cb
}

// ID returns the widget id.
func (c *CheckboxKeyboard) ID() string {
	return c.id
}

// Checked reads the current flag from the active context.
func (c *CheckboxKeyboard) Checked(m Manager) (bool, error) {
	v, err := widgetData(m, c.id, c.def)
	if err != nil {
		return c.def, err
	}
	b, ok := v.(bool)
	if !ok {
		return c.def, nil
	}
	return b, nil
}

// SetChecked stores the flag and fires the change callback.
func (c *CheckboxKeyboard) SetChecked(ctx context.Context, checked bool, m Manager) error {
	if err := setWidgetData(m, c.id, checked); err != nil {
		return err
	}
	if c.onChange != nil {
		return c.onChange(ctx, c.id, m)
	}
	return nil
}

// When returns a copy shown only when p holds.
func (c *CheckboxKeyboard) When(p Predicate) *CheckboxKeyboard {
	n := *c
	n.when = p
	return &n
}

func (c *CheckboxKeyboard) IsVisible(data Data, m Manager) (bool, error) {
	return visible(c.when, data, c, m)
}

func (c *CheckboxKeyboard) RenderKeyboard(ctx context.Context, data Data, m Manager) (domain.Keyboard, error) {
	if ok, err := c.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	label, err := c.label.RenderText(ctx, data, m)
	if err != nil {
		return nil, err
	}
	return domain.Keyboard{{{Text: label, CallbackData: c.id}}}, nil
}

func (c *CheckboxKeyboard) ProcessCallback(ctx context.Context, cb *domain.CallbackEvent, payload string, m Manager) (bool, error) {
	if payload != c.id {
		return false, nil
	}
	checked, err := c.Checked(m)
	if err != nil {
		return true, err
	}
	return true, c.SetChecked(ctx, !checked, m)
}
