package widget

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// OnClick handles a press on a Button.
type OnClick func(ctx context.Context, cb *domain.CallbackEvent, b *Button, m Manager) error

// Button renders one button carrying its id as callback payload.
type Button struct {
	id      string
	text    Text
	onClick OnClick
	when    Predicate
}

// NewButton creates a button. It panics when id is not a valid widget id.
func NewButton(text Text, id string, onClick OnClick) *Button {
	return &Button{id: mustID(id), text: text, onClick: onClick}
}

// ID returns the widget id.
func (b *Button) ID() string {
	return b.id
}

// When returns a copy shown only when p holds.
func (b *Button) When(p Predicate) *Button {
	c := *b
	c.when = p
	return &c
}

func (b *Button) IsVisible(data Data, m Manager) (bool, error) {
	return visible(b.when, data, b, m)
}

func (b *Button) RenderKeyboard(ctx context.Context, data Data, m Manager) (domain.Keyboard, error) {
	if ok, err := b.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	label, err := b.text.RenderText(ctx, data, m)
	if err != nil {
		return nil, err
	}
	return domain.Keyboard{{{Text: label, CallbackData: b.id}}}, nil
}

func (b *Button) ProcessCallback(ctx context.Context, cb *domain.CallbackEvent, payload string, m Manager) (bool, error) {
	if payload != b.id {
		return false, nil
	}
	if b.onClick != nil {
		if err := b.onClick(ctx, cb, b, m); err != nil {
			return true, err
		}
	}
	return true, nil
}

// chain runs the user handler first, then the preset action.
func chain(user OnClick, action func(ctx context.Context, m Manager) error) OnClick {
	return func(ctx context.Context, cb *domain.CallbackEvent, b *Button, m Manager) error {
		if user != nil {
			if err := user(ctx, cb, b, m); err != nil {
				return err
			}
		}
		return action(ctx, m)
	}
}

// Next switches to the following window of the dialog.
func Next(text Text, id string, onClick OnClick) *Button {
	return NewButton(text, id, chain(onClick, func(ctx context.Context, m Manager) error {
		return m.Next(ctx)
	}))
}

// Back switches to the preceding window of the dialog.
func Back(text Text, id string, onClick OnClick) *Button {
	return NewButton(text, id, chain(onClick, func(ctx context.Context, m Manager) error {
		return m.Back(ctx)
	}))
}

// Cancel finishes the dialog without a result.
func Cancel(text Text, id string, onClick OnClick) *Button {
	return NewButton(text, id, chain(onClick, func(ctx context.Context, m Manager) error {
		return m.Done(ctx, nil)
	}))
}

// SwitchTo switches to state, which must belong to the same dialog.
func SwitchTo(text Text, id string, state domain.State, onClick OnClick) *Button {
	return NewButton(text, id, chain(onClick, func(ctx context.Context, m Manager) error {
		return m.SwitchTo(ctx, state)
	}))
}

// Start launches another dialog with the given start data and launch mode.
func Start(text Text, id string, group domain.StatesGroup, data map[string]any, mode domain.LaunchMode, onClick OnClick) *Button {
	return NewButton(text, id, chain(onClick, func(ctx context.Context, m Manager) error {
		return m.Start(ctx, group, data, mode)
	}))
}

// URLButton renders a link. It never consumes callbacks.
type URLButton struct {
	text Text
	url  Text
	when Predicate
}

// URL creates a link button; both label and target are rendered from data.
func URL(text, url Text) *URLButton {
	return &URLButton{text: text, url: url}
}

// When returns a copy shown only when p holds.
func (b *URLButton) When(p Predicate) *URLButton {
	c := *b
	c.when = p
	return &c
}

func (b *URLButton) IsVisible(data Data, m Manager) (bool, error) {
	return visible(b.when, data, b, m)
}

func (b *URLButton) RenderKeyboard(ctx context.Context, data Data, m Manager) (domain.Keyboard, error) {
	if ok, err := b.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	label, err := b.text.RenderText(ctx, data, m)
	if err != nil {
		return nil, err
	}
	target, err := b.url.RenderText(ctx, data, m)
	if err != nil {
		return nil, err
	}
	return domain.Keyboard{{{Text: label, URL: target}}}, nil
}

func (b *URLButton) ProcessCallback(context.Context, *domain.CallbackEvent, string, Manager) (bool, error) {
	return false, nil
}
