package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
)

// builder collects errors while turning specs into widgets so that one pass
// reports every problem of a document.
type builder struct {
	l      *Loader
	errs   []error
	group  domain.StatesGroup
	window string
	states map[domain.State]bool
	groups map[string]bool
}

func (b *builder) fail(format string, args ...any) {
	where := string(b.group)
	if b.window != "" {
		where += ":" + b.window
	}
	b.errs = append(b.errs, fmt.Errorf("%s: %s", where, fmt.Sprintf(format, args...)))
}

// Build turns a parsed document into dialogs.
func (l *Loader) Build(file *File) ([]*dialog.Dialog, error) {
	b := &builder{l: l, states: make(map[domain.State]bool), groups: make(map[string]bool)}
	for _, d := range file.Dialogs {
		b.groups[d.Group] = true
		for _, w := range d.Windows {
			b.states[domain.StatesGroup(d.Group).State(w.Name)] = true
		}
	}

	dialogs := make([]*dialog.Dialog, 0, len(file.Dialogs))
	for _, spec := range file.Dialogs {
		if d := b.dialogOf(spec); d != nil {
			dialogs = append(dialogs, d)
		}
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return dialogs, nil
}

func (b *builder) dialogOf(spec DialogSpec) *dialog.Dialog {
	b.group = domain.StatesGroup(spec.Group)
	b.window = ""
	if spec.Group == "" || strings.Contains(spec.Group, ":") {
		b.fail("invalid group %q", spec.Group)
		return nil
	}

	var opts []dialog.Option
	if spec.LaunchMode != "" {
		opts = append(opts, dialog.WithLaunchMode(domain.LaunchMode(spec.LaunchMode)))
	}
	if g := b.getter(spec.Data, spec.Getter); g != nil {
		opts = append(opts, dialog.WithGetter(g))
	}
	if spec.OnStart != "" {
		if h, ok := b.l.starts[spec.OnStart]; ok {
			opts = append(opts, dialog.WithOnStart(h))
		} else {
			b.fail("unknown start hook %q", spec.OnStart)
		}
	}
	if spec.OnClose != "" {
		if h, ok := b.l.closes[spec.OnClose]; ok {
			opts = append(opts, dialog.WithOnClose(h))
		} else {
			b.fail("unknown close hook %q", spec.OnClose)
		}
	}
	if h := b.resultHook(spec.OnResult, spec.ResultKey); h != nil {
		opts = append(opts, dialog.WithOnProcessResult(h))
	}

	windows := make([]*dialog.Window, 0, len(spec.Windows))
	for _, ws := range spec.Windows {
		b.window = ws.Name
		windows = append(windows, b.windowOf(ws))
	}
	b.window = ""

	d, err := dialog.New(windows, opts...)
	if err != nil {
		b.fail("%v", err)
		return nil
	}
	return d
}

func (b *builder) windowOf(spec WindowSpec) *dialog.Window {
	w := &dialog.Window{
		State:             b.group.State(spec.Name),
		Text:              b.text(spec.Text),
		Media:             b.media(spec.Media),
		ParseMode:         spec.ParseMode,
		DisableWebPreview: spec.DisableWebPreview,
	}
	if len(spec.Keyboard) > 0 {
		w.Keyboard = b.container("group", spec.Keyboard, spec.Width, "")
	}
	if spec.Getter != "" {
		w.Getter = b.getter(nil, spec.Getter)
	}
	switch {
	case spec.OnMessage != "" && spec.Input != nil:
		b.fail("on_message and input are exclusive")
	case spec.OnMessage != "":
		if h, ok := b.l.messages[spec.OnMessage]; ok {
			w.OnMessage = h
		} else {
			b.fail("unknown message handler %q", spec.OnMessage)
		}
	case spec.Input != nil:
		w.OnMessage = b.input(*spec.Input)
	}
	return w
}

// getter merges static data with the data of the named getter.
func (b *builder) getter(static map[string]any, name string) dialog.Getter {
	var named dialog.Getter
	if name != "" {
		g, ok := b.l.getters[name]
		if !ok {
			b.fail("unknown getter %q", name)
			return nil
		}
		named = g
	}
	if len(static) == 0 {
		return named
	}
	return func(ctx context.Context, m widget.Manager) (widget.Data, error) {
		data := make(widget.Data, len(static))
		for k, v := range static {
			data[k] = v
		}
		if named == nil {
			return data, nil
		}
		extra, err := named(ctx, m)
		if err != nil {
			return nil, err
		}
		for k, v := range extra {
			data[k] = v
		}
		return data, nil
	}
}

func (b *builder) resultHook(name, key string) dialog.ResultHook {
	var named dialog.ResultHook
	if name != "" {
		h, ok := b.l.results[name]
		if !ok {
			b.fail("unknown result hook %q", name)
			return nil
		}
		named = h
	}
	if key == "" {
		return named
	}
	return func(ctx context.Context, startData map[string]any, result any, m widget.Manager) error {
		c, err := m.Context()
		if err != nil {
			return err
		}
		c.SetData(key, result, domain.ScopeDialog)
		if named != nil {
			return named(ctx, startData, result, m)
		}
		return nil
	}
}

func (b *builder) input(spec InputSpec) dialog.MessageHandler {
	if spec.Key == "" {
		b.fail("input needs a key")
	}
	act := b.action(spec.Then)
	return func(ctx context.Context, msg *domain.MessageEvent, m widget.Manager) error {
		c, err := m.Context()
		if err != nil {
			return err
		}
		c.SetData(spec.Key, msg.Text, domain.ScopeDialog)
		return act(ctx, m)
	}
}

func (b *builder) predicate(src string) widget.Predicate {
	if src == "" {
		return nil
	}
	p, err := widget.Expr(src)
	if err != nil {
		b.fail("%v", err)
		return nil
	}
	return p
}
