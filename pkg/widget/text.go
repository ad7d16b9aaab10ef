package widget

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"text/template"
)

// ConstText renders a fixed string.
type ConstText struct {
	text string
	when Predicate
}

// Const creates a literal text.
func Const(text string) *ConstText {
	return &ConstText{text: text}
}

// When returns a copy shown only when p holds.
func (t *ConstText) When(p Predicate) *ConstText {
	c := *t
	c.when = p
	return &c
}

func (t *ConstText) IsVisible(data Data, m Manager) (bool, error) {
	return visible(t.when, data, t, m)
}

func (t *ConstText) RenderText(ctx context.Context, data Data, m Manager) (string, error) {
	if ok, err := t.IsVisible(data, m); err != nil || !ok {
		return "", err
	}
	return t.text, nil
}

// FormatText substitutes named placeholders from the data mapping using text/template
// syntax ("Hello, {{.name}}"). A missing key is a rendering error.
type FormatText struct {
	src  string
	tmpl *template.Template
	when Predicate
}

// NewFormat parses src.
func NewFormat(src string) (*FormatText, error) {
	tmpl, err := template.New("format").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse format %q: %w", src, err)
	}
	return &FormatText{src: src, tmpl: tmpl}, nil
}

// Format is like NewFormat but panics when src cannot be parsed.
func Format(src string) *FormatText {
	t, err := NewFormat(src)
	if err != nil {
		panic(err)
	}
	return t
}

// When returns a copy shown only when p holds.
func (t *FormatText) When(p Predicate) *FormatText {
	c := *t
	c.when = p
	return &c
}

func (t *FormatText) IsVisible(data Data, m Manager) (bool, error) {
	return visible(t.when, data, t, m)
}

func (t *FormatText) RenderText(ctx context.Context, data Data, m Manager) (string, error) {
	if ok, err := t.IsVisible(data, m); err != nil || !ok {
		return "", err
	}
	var b strings.Builder
	if err := t.tmpl.Execute(&b, map[string]any(data)); err != nil {
		return "", &RenderError{Widget: fmt.Sprintf("Format(%q)", t.src), Err: err}
	}
	return b.String(), nil
}

// MultiText joins the non-empty renderings of its children with a separator.
type MultiText struct {
	sep   string
	texts []Text
	when  Predicate
}

// Multi creates a concatenation. Children rendering "" are skipped, so the
// separator never touches an empty segment.
func Multi(sep string, texts ...Text) *MultiText {
	return &MultiText{sep: sep, texts: texts}
}

// When returns a copy shown only when p holds.
func (t *MultiText) When(p Predicate) *MultiText {
	c := *t
	c.when = p
	return &c
}

func (t *MultiText) IsVisible(data Data, m Manager) (bool, error) {
	return visible(t.when, data, t, m)
}

func (t *MultiText) RenderText(ctx context.Context, data Data, m Manager) (string, error) {
	if ok, err := t.IsVisible(data, m); err != nil || !ok {
		return "", err
	}
	parts := make([]string, 0, len(t.texts))
	for _, child := range t.texts {
		s, err := child.RenderText(ctx, data, m)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, t.sep), nil
}

// Selector computes the key of a CaseText.
type Selector func(data Data, w *CaseText, m Manager) (any, error)

// SelectField selects by the value of data[name].
func SelectField(name string) Selector {
	return func(data Data, _ *CaseText, _ Manager) (any, error) {
		return data[name], nil
	}
}

// CaseText renders the child mapped to the selector's key.
type CaseText struct {
	selector Selector
	texts    map[any]Text
	fallback Text
	when     Predicate
}

// Case creates a selector text. Keys are compared with ==, so they must be comparable.
func Case(selector Selector, texts map[any]Text) *CaseText {
	return &CaseText{selector: selector, texts: texts}
}

// Default returns a copy rendering t for unmapped keys instead of failing.
func (t *CaseText) Default(fallback Text) *CaseText {
	c := *t
	c.fallback = fallback
	return &c
}

// When returns a copy shown only when p holds.
func (t *CaseText) When(p Predicate) *CaseText {
	c := *t
	c.when = p
	return &c
}

func (t *CaseText) IsVisible(data Data, m Manager) (bool, error) {
	return visible(t.when, data, t, m)
}

func (t *CaseText) RenderText(ctx context.Context, data Data, m Manager) (string, error) {
	if ok, err := t.IsVisible(data, m); err != nil || !ok {
		return "", err
	}
	key, err := t.selector(data, t, m)
	if err != nil {
		return "", err
	}
	child, ok := t.lookup(key)
	if !ok {
		if t.fallback == nil {
			return "", &RenderError{Widget: "Case", Err: fmt.Errorf("no text for key %v", key)}
		}
		child = t.fallback
	}
	return child.RenderText(ctx, data, m)
}

func (t *CaseText) lookup(key any) (Text, bool) {
	if key != nil && !reflect.TypeOf(key).Comparable() {
		return nil, false
	}
	child, ok := t.texts[key]
	return child, ok
}

// ListText renders a text once per item of data[itemsKey] and joins the results.
// Each item is rendered with a copy of data extended by "item" and "pos" (1-based).
type ListText struct {
	field    Text
	itemsKey string
	sep      string
	when     Predicate
}

// List creates a list text.
func List(field Text, itemsKey, sep string) *ListText {
	return &ListText{field: field, itemsKey: itemsKey, sep: sep}
}

// When returns a copy shown only when p holds.
func (t *ListText) When(p Predicate) *ListText {
	c := *t
	c.when = p
	return &c
}

func (t *ListText) IsVisible(data Data, m Manager) (bool, error) {
	return visible(t.when, data, t, m)
}

func (t *ListText) RenderText(ctx context.Context, data Data, m Manager) (string, error) {
	if ok, err := t.IsVisible(data, m); err != nil || !ok {
		return "", err
	}
	items, err := itemsOf(data, t.itemsKey)
	if err != nil {
		return "", &RenderError{Widget: "List", Err: err}
	}
	parts := make([]string, 0, len(items))
	for i, item := range items {
		s, err := t.field.RenderText(ctx, itemData(data, item, i), m)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, t.sep), nil
}

// itemsOf reads data[key] as a list of items. A missing key yields no items.
func itemsOf(data Data, key string) ([]any, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if items, ok := raw.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("data[%q] is %T, not a list", key, raw)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func itemData(data Data, item any, i int) Data {
	out := make(Data, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["item"] = item
	out["pos"] = i + 1
	return out
}
