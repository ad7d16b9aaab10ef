package loader

import (
	"context"
	"strings"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
)

var mediaTypes = map[string]domain.MediaType{
	"photo":    domain.MediaPhoto,
	"video":    domain.MediaVideo,
	"document": domain.MediaDocument,
	"audio":    domain.MediaAudio,
}

// text returns nil for an empty spec.
func (b *builder) text(spec TextSpec) widget.Text {
	if spec.Value == "" && spec.Items == "" {
		return nil
	}
	var t widget.Text = widget.Const(spec.Value)
	if strings.Contains(spec.Value, "{{") {
		f, err := widget.NewFormat(spec.Value)
		if err != nil {
			b.fail("%v", err)
			return nil
		}
		t = f
	}
	if spec.Items != "" {
		sep := spec.Sep
		if sep == "" {
			sep = "\n"
		}
		t = widget.List(t, spec.Items, sep)
	}

	when := b.predicate(spec.When)
	if when == nil {
		return t
	}
	switch t := t.(type) {
	case *widget.ConstText:
		return t.When(when)
	case *widget.FormatText:
		return t.When(when)
	case *widget.ListText:
		return t.When(when)
	}
	return t
}

func (b *builder) label(spec TextSpec, what string) widget.Text {
	t := b.text(spec)
	if t == nil {
		b.fail("%s needs a text", what)
		return widget.Const("")
	}
	return t
}

func (b *builder) media(spec *MediaSpec) widget.Media {
	if spec == nil {
		return nil
	}
	when := b.predicate(spec.When)
	if spec.Key != "" {
		m := widget.DynamicMedia(spec.Key)
		if when != nil {
			m = m.When(when)
		}
		return m
	}

	mt, ok := mediaTypes[spec.Type]
	if !ok {
		b.fail("unknown media type %q", spec.Type)
		return nil
	}
	var m *widget.StaticMediaWidget
	switch {
	case spec.URL != "" && spec.Path != "":
		b.fail("media url and path are exclusive")
		return nil
	case spec.URL != "":
		m = widget.StaticMedia(mt, b.text(TextSpec{Value: spec.URL}))
	case spec.Path != "":
		m = widget.StaticFile(mt, b.text(TextSpec{Value: spec.Path}))
	default:
		b.fail("media needs a url, a path or a key")
		return nil
	}
	if when != nil {
		m = m.When(when)
	}
	return m
}

func (b *builder) container(kind string, children []WidgetSpec, width int, when string) widget.Keyboard {
	kids := make([]widget.Keyboard, 0, len(children))
	for _, c := range children {
		if k := b.keyboard(c); k != nil {
			kids = append(kids, k)
		}
	}
	var g *widget.GroupKeyboard
	switch kind {
	case "row":
		g = widget.Row(kids...)
	case "column":
		g = widget.Column(kids...)
	default:
		g = widget.Group(kids...)
	}
	if width != 0 {
		g = g.Width(width)
	}
	if p := b.predicate(when); p != nil {
		g = g.When(p)
	}
	return g
}

// keyboard builds one widget. It returns nil after reporting an error.
func (b *builder) keyboard(spec WidgetSpec) widget.Keyboard {
	switch spec.Type {
	case "row", "column", "group":
		return b.container(spec.Type, spec.Children, spec.Width, spec.When)
	case "url":
		if spec.URL == "" {
			b.fail("url button needs a url")
			return nil
		}
		u := widget.URL(b.label(spec.Text, "url button"), b.text(TextSpec{Value: spec.URL}))
		if p := b.predicate(spec.When); p != nil {
			u = u.When(p)
		}
		return u
	}

	if err := widget.ValidateID(spec.ID); err != nil {
		b.fail("%s widget: %v", spec.Type, err)
		return nil
	}
	when := b.predicate(spec.When)

	var out widget.Keyboard
	switch spec.Type {
	case "button", "next", "back", "cancel", "done", "switch", "start":
		btn := b.button(spec)
		if btn == nil {
			return nil
		}
		if when != nil {
			btn = btn.When(when)
		}
		out = btn
	case "checkbox":
		c := widget.Checkbox(b.label(spec.Checked, "checkbox"), b.label(spec.Unchecked, "checkbox"), spec.ID, spec.Default, b.onChange(spec.OnChange))
		if when != nil {
			c = c.When(when)
		}
		out = c
	case "radio":
		if spec.Items == "" {
			b.fail("radio %s needs items", spec.ID)
		}
		r := widget.Radio(b.label(spec.Checked, "radio"), b.label(spec.Unchecked, "radio"), spec.ID, spec.Items, nil, b.onChange(spec.OnChange))
		if when != nil {
			r = r.When(when)
		}
		out = r
	case "select":
		if spec.Items == "" {
			b.fail("select %s needs items", spec.ID)
		}
		s := widget.Select(b.label(spec.Text, "select"), spec.ID, spec.Items, nil, b.itemClick(spec))
		if when != nil {
			s = s.When(when)
		}
		out = s
	default:
		b.fail("unknown widget type %q", spec.Type)
	}
	return out
}

func (b *builder) button(spec WidgetSpec) *widget.Button {
	text := b.label(spec.Text, spec.Type+" button")
	click := b.onClick(spec.OnClick)

	switch spec.Type {
	case "next":
		return widget.Next(text, spec.ID, click)
	case "back":
		return widget.Back(text, spec.ID, click)
	case "cancel":
		return widget.Cancel(text, spec.ID, click)
	case "done":
		result := spec.Result
		return widget.NewButton(text, spec.ID, then(click, func(ctx context.Context, m widget.Manager) error {
			return m.Done(ctx, result)
		}))
	case "switch":
		state, ok := b.state(spec.State)
		if !ok {
			return nil
		}
		return widget.SwitchTo(text, spec.ID, state, click)
	case "start":
		if !b.startable(spec.Group) {
			return nil
		}
		mode := domain.LaunchMode(spec.Mode)
		if !mode.Valid() {
			b.fail("invalid launch mode %q", spec.Mode)
			return nil
		}
		return widget.Start(text, spec.ID, domain.StatesGroup(spec.Group), spec.Data, mode, click)
	}
	return widget.NewButton(text, spec.ID, click)
}

// then runs the user handler first, like the preset buttons do.
func then(user widget.OnClick, action func(ctx context.Context, m widget.Manager) error) widget.OnClick {
	return func(ctx context.Context, cb *domain.CallbackEvent, btn *widget.Button, m widget.Manager) error {
		if user != nil {
			if err := user(ctx, cb, btn, m); err != nil {
				return err
			}
		}
		return action(ctx, m)
	}
}

func (b *builder) onClick(name string) widget.OnClick {
	if name == "" {
		return nil
	}
	h, ok := b.l.clicks[name]
	if !ok {
		b.fail("unknown click handler %q", name)
	}
	return h
}

func (b *builder) onChange(name string) widget.OnStateChanged {
	if name == "" {
		return nil
	}
	h, ok := b.l.changes[name]
	if !ok {
		b.fail("unknown change handler %q", name)
	}
	return h
}

// itemClick resolves a named handler, or stores the item id and runs Then.
func (b *builder) itemClick(spec WidgetSpec) widget.OnItemClick {
	if spec.OnClick != "" {
		h, ok := b.l.itemClicks[spec.OnClick]
		if !ok {
			b.fail("unknown item click handler %q", spec.OnClick)
		}
		return h
	}
	if spec.Store == "" && spec.Then == "" {
		return nil
	}
	act := b.action(spec.Then)
	key := spec.Store
	return func(ctx context.Context, _ *domain.CallbackEvent, _ *widget.SelectKeyboard, m widget.Manager, itemID string) error {
		if key != "" {
			c, err := m.Context()
			if err != nil {
				return err
			}
			c.SetData(key, itemID, domain.ScopeDialog)
		}
		return act(ctx, m)
	}
}

// action resolves the built-in actions:
// "" (stay), next, back, done, close, switch:<state>, start:<group>.
func (b *builder) action(src string) func(ctx context.Context, m widget.Manager) error {
	noop := func(context.Context, widget.Manager) error { return nil }
	verb, arg, _ := strings.Cut(src, ":")
	switch verb {
	case "":
		return noop
	case "next":
		return func(ctx context.Context, m widget.Manager) error { return m.Next(ctx) }
	case "back":
		return func(ctx context.Context, m widget.Manager) error { return m.Back(ctx) }
	case "done":
		return func(ctx context.Context, m widget.Manager) error { return m.Done(ctx, nil) }
	case "close":
		return func(ctx context.Context, m widget.Manager) error { return m.Close(ctx) }
	case "switch":
		state, ok := b.state(arg)
		if !ok {
			return noop
		}
		return func(ctx context.Context, m widget.Manager) error { return m.SwitchTo(ctx, state) }
	case "start":
		if !b.startable(arg) {
			return noop
		}
		group := domain.StatesGroup(arg)
		return func(ctx context.Context, m widget.Manager) error { return m.Start(ctx, group, nil, "") }
	}
	b.fail("unknown action %q", src)
	return noop
}

// state resolves a window name of the current dialog or a full state.
func (b *builder) state(ref string) (domain.State, bool) {
	state := domain.State(ref)
	if !strings.Contains(ref, ":") {
		state = b.group.State(ref)
	}
	if state.Group() != string(b.group) {
		b.fail("switch target %q is outside of the dialog", ref)
		return "", false
	}
	if !b.states[state] {
		b.fail("unknown window %q", ref)
		return "", false
	}
	return state, true
}

func (b *builder) startable(group string) bool {
	if group == "" {
		b.fail("start needs a group")
		return false
	}
	if !b.groups[group] && !b.l.external[group] {
		b.fail("unknown dialog %q", group)
		return false
	}
	return true
}
