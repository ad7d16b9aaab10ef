package observability

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// Combine merges several hook sets into one. Hooks run in argument order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, set := range sets {
		out.OnDialogStart = chainDialog(out.OnDialogStart, set.OnDialogStart)
		out.OnDialogDone = chainDialog(out.OnDialogDone, set.OnDialogDone)
		out.OnDialogClose = chainDialog(out.OnDialogClose, set.OnDialogClose)
		out.OnWindowShow = chainWindow(out.OnWindowShow, set.OnWindowShow)
		out.OnEventError = chainError(out.OnEventError, set.OnEventError)
	}
	return out
}

func chainDialog(a, b func(context.Context, *domain.DialogEvent)) func(context.Context, *domain.DialogEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *domain.DialogEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainWindow(a, b func(context.Context, *domain.WindowEvent)) func(context.Context, *domain.WindowEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *domain.WindowEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainError(a, b func(context.Context, domain.Event, error)) func(context.Context, domain.Event, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev domain.Event, err error) {
		a(ctx, ev, err)
		b(ctx, ev, err)
	}
}
