package widget

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// GroupKeyboard composes child keyboards.
type GroupKeyboard struct {
	children []Keyboard
	// width > 0 flattens all buttons and re-wraps them; width < 0 puts them in one row.
	width int
	when  Predicate
}

// Group keeps the row structure of each child.
func Group(children ...Keyboard) *GroupKeyboard {
	return &GroupKeyboard{children: children}
}

// Row puts every child button into a single row.
func Row(children ...Keyboard) *GroupKeyboard {
	return &GroupKeyboard{children: children, width: -1}
}

// Column puts every child button into its own row.
func Column(children ...Keyboard) *GroupKeyboard {
	return &GroupKeyboard{children: children, width: 1}
}

// Width returns a copy that flattens the child buttons into rows of n buttons.
// The last row holds the remainder.
func (g *GroupKeyboard) Width(n int) *GroupKeyboard {
	c := *g
	c.width = n
	return &c
}

// When returns a copy shown only when p holds.
func (g *GroupKeyboard) When(p Predicate) *GroupKeyboard {
	c := *g
	c.when = p
	return &c
}

func (g *GroupKeyboard) IsVisible(data Data, m Manager) (bool, error) {
	return visible(g.when, data, g, m)
}

func (g *GroupKeyboard) RenderKeyboard(ctx context.Context, data Data, m Manager) (domain.Keyboard, error) {
	if ok, err := g.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	var rows domain.Keyboard
	for _, child := range g.children {
		kb, err := child.RenderKeyboard(ctx, data, m)
		if err != nil {
			return nil, err
		}
		for _, row := range kb {
			if len(row) > 0 {
				rows = append(rows, row)
			}
		}
	}
	if g.width == 0 {
		return rows, nil
	}
	return wrap(rows, g.width), nil
}

// ProcessCallback dispatches to children in order and stops at the first consumer.
func (g *GroupKeyboard) ProcessCallback(ctx context.Context, cb *domain.CallbackEvent, payload string, m Manager) (bool, error) {
	for _, child := range g.children {
		ok, err := child.ProcessCallback(ctx, cb, payload, m)
		if ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

func wrap(rows domain.Keyboard, width int) domain.Keyboard {
	var flat []domain.Button
	for _, row := range rows {
		flat = append(flat, row...)
	}
	if len(flat) == 0 {
		return nil
	}
	if width < 0 {
		return domain.Keyboard{flat}
	}
	out := make(domain.Keyboard, 0, (len(flat)+width-1)/width)
	for start := 0; start < len(flat); start += width {
		end := min(start+width, len(flat))
		out = append(out, flat[start:end:end])
	}
	return out
}
