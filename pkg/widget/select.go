package widget

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// itemSeparator splits the widget id from the item id in select payloads.
const itemSeparator = ":"

// ItemID extracts a stable identifier from an item.
type ItemID func(item any) (string, error)

// DefaultItemID formats the item with fmt, or reads the "id" key of map items.
func DefaultItemID(item any) (string, error) {
	if m, ok := item.(map[string]any); ok {
		if id, ok := m["id"]; ok {
			return fmt.Sprint(id), nil
		}
	}
	return fmt.Sprint(item), nil
}

// OnItemClick handles a press on one item of a Select.
type OnItemClick func(ctx context.Context, cb *domain.CallbackEvent, s *SelectKeyboard, m Manager, itemID string) error

// SelectKeyboard renders one button per item of data[itemsKey].
// Labels are rendered with a copy of data extended by "item" and "pos".
type SelectKeyboard struct {
	id       string
	text     Text
	itemsKey string
	itemID   ItemID
	onClick  OnItemClick
	when     Predicate
}

// Select creates a dynamic keyboard. It panics when id is not a valid widget id.
// A nil itemID uses DefaultItemID.
func Select(text Text, id, itemsKey string, itemID ItemID, onClick OnItemClick) *SelectKeyboard {
	if itemID == nil {
		itemID = DefaultItemID
	}
	return &SelectKeyboard{id: mustID(id), text: text, itemsKey: itemsKey, itemID: itemID, onClick: onClick}
}

// ID returns the widget id.
func (s *SelectKeyboard) ID() string {
	return s.id
}

// When returns a copy shown only when p holds.
func (s *SelectKeyboard) When(p Predicate) *SelectKeyboard {
	c := *s
	c.when = p
	return &c
}

func (s *SelectKeyboard) IsVisible(data Data, m Manager) (bool, error) {
	return visible(s.when, data, s, m)
}

func (s *SelectKeyboard) RenderKeyboard(ctx context.Context, data Data, m Manager) (domain.Keyboard, error) {
	if ok, err := s.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	return s.render(ctx, data, m, func(string) Text { return s.text })
}

func (s *SelectKeyboard) render(ctx context.Context, data Data, m Manager, label func(itemID string) Text) (domain.Keyboard, error) {
	items, err := itemsOf(data, s.itemsKey)
	if err != nil {
		return nil, &RenderError{Widget: s.id, Err: err}
	}
	var row []domain.Button
	for i, item := range items {
		id, err := s.itemID(item)
		if err != nil {
			return nil, &RenderError{Widget: s.id, Err: err}
		}
		text, err := label(id).RenderText(ctx, itemData(data, item, i), m)
		if err != nil {
			return nil, err
		}
		row = append(row, domain.Button{Text: text, CallbackData: s.id + itemSeparator + id})
	}
	if len(row) == 0 {
		return nil, nil
	}
	return domain.Keyboard{row}, nil
}

func (s *SelectKeyboard) ProcessCallback(ctx context.Context, cb *domain.CallbackEvent, payload string, m Manager) (bool, error) {
	id, item, found := strings.Cut(payload, itemSeparator)
	if !found || id != s.id {
		return false, nil
	}
	if s.onClick != nil {
		return true, s.onClick(ctx, cb, s, m, item)
	}
	return true, nil
}

// RadioKeyboard is a Select remembering a single checked item in the widget data.
type RadioKeyboard struct {
	sel       *SelectKeyboard
	checked   Text
	unchecked Text
	onChange  OnStateChanged
}

// Radio creates a single-choice keyboard. checked and unchecked are the item label
// variants. It panics when id is not a valid widget id.
func Radio(checked, unchecked Text, id, itemsKey string, itemID ItemID, onChange OnStateChanged) *RadioKeyboard {
	return &RadioKeyboard{
		sel:       Select(unchecked, id, itemsKey, itemID, nil),
		checked:   checked,
		unchecked: unchecked,
		onChange:  onChange,
	}
}

// ID returns the widget id.
func (r *RadioKeyboard) ID() string {
	return r.sel.id
}

// Checked returns the id of the checked item, or "".
func (r *RadioKeyboard) Checked(m Manager) (string, error) {
	v, err := widgetData(m, r.sel.id, "")
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// SetChecked stores the checked item and fires the change callback.
func (r *RadioKeyboard) SetChecked(ctx context.Context, itemID string, m Manager) error {
	if err := setWidgetData(m, r.sel.id, itemID); err != nil {
		return err
	}
	if r.onChange != nil {
		return r.onChange(ctx, r.sel.id, m)
	}
	return nil
}

// When returns a copy shown only when p holds.
func (r *RadioKeyboard) When(p Predicate) *RadioKeyboard {
	c := *r
	c.sel = r.sel.When(p)
	return &c
}

func (r *RadioKeyboard) IsVisible(data Data, m Manager) (bool, error) {
	return visible(r.sel.when, data, r, m)
}

func (r *RadioKeyboard) RenderKeyboard(ctx context.Context, data Data, m Manager) (domain.Keyboard, error) {
	if ok, err := r.IsVisible(data, m); err != nil || !ok {
		return nil, err
	}
	current, err := r.Checked(m)
	if err != nil {
		return nil, err
	}
	return r.sel.render(ctx, data, m, func(itemID string) Text {
		if itemID == current {
			return r.checked
		}
		return r.unchecked
	})
}

func (r *RadioKeyboard) ProcessCallback(ctx context.Context, cb *domain.CallbackEvent, payload string, m Manager) (bool, error) {
	id, item, found := strings.Cut(payload, itemSeparator)
	if !found || id != r.sel.id {
		return false, nil
	}
	current, err := r.Checked(m)
	if err != nil {
		return true, err
	}
	if current == item {
		return true, nil
	}
	return true, r.SetChecked(ctx, item, m)
}
