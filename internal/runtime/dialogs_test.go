package runtime_test

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
)

const (
	mainMenu   domain.State = "main:menu"
	mainSecond domain.State = "main:second"
	subMain    domain.State = "sub:main"
)

// mainDialog has two windows; the menu shows the last result returned by a child.
func mainDialog(trace *[]string) *dialog.Dialog {
	return dialog.MustNew([]*dialog.Window{
		{
			State: mainMenu,
			Text: widget.Multi(" ",
				widget.Const("Menu"),
				widget.Format("result={{.result}}").When(widget.WhenField("result")),
			),
			Keyboard: widget.Row(
				widget.Next(widget.Const("Next"), "next", nil),
				widget.Start(widget.Const("Sub"), "sub", "sub", nil, "", nil),
				widget.Checkbox(widget.Const("[x]"), widget.Const("[ ]"), "notify", false, nil),
			),
			Getter: func(_ context.Context, m widget.Manager) (widget.Data, error) {
				c, err := m.Context()
				if err != nil {
					return nil, err
				}
				return widget.Data{"result": c.DialogData["result"]}, nil
			},
			OnMessage: func(ctx context.Context, msg *domain.MessageEvent, m widget.Manager) error {
				return m.Update(ctx, map[string]any{"result": msg.Text})
			},
		},
		{
			State:    mainSecond,
			Text:     widget.Const("Second"),
			Keyboard: widget.Back(widget.Const("Back"), "back", nil),
		},
	}, dialog.WithOnProcessResult(func(_ context.Context, _ map[string]any, result any, m widget.Manager) error {
		*trace = append(*trace, "result")
		c, err := m.Context()
		if err != nil {
			return err
		}
		c.SetData("result", result, domain.ScopeDialog)
		return nil
	}))
}

// subDialog finishes with 42 or cancels without a result.
func subDialog(trace *[]string, opts ...dialog.Option) *dialog.Dialog {
	opts = append([]dialog.Option{
		dialog.WithOnClose(func(context.Context, any, widget.Manager) error {
			*trace = append(*trace, "close")
			return nil
		}),
	}, opts...)
	return dialog.MustNew([]*dialog.Window{{
		State: subMain,
		Text:  widget.Const("Sub"),
		Keyboard: widget.Row(
			widget.NewButton(widget.Const("Finish"), "finish", func(ctx context.Context, _ *domain.CallbackEvent, _ *widget.Button, m widget.Manager) error {
				return m.Done(ctx, 42)
			}),
			widget.Cancel(widget.Const("Cancel"), "cancel", nil),
		),
	}}, opts...)
}

func standardDialogs(trace *[]string) []*dialog.Dialog {
	return []*dialog.Dialog{mainDialog(trace), subDialog(trace)}
}
