package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// Logging returns hooks that log every lifecycle event on logger.
// Navigation is logged at debug level, failed events at warn.
func Logging(logger *slog.Logger) domain.LifecycleHooks {
	dialogEvent := func(msg string) func(context.Context, *domain.DialogEvent) {
		return func(ctx context.Context, ev *domain.DialogEvent) {
			logger.DebugContext(ctx, msg,
				"intent", ev.IntentID,
				"stack", ev.StackID,
				"dialog", ev.Dialog,
				"state", ev.State,
			)
		}
	}
	return domain.LifecycleHooks{
		OnDialogStart: dialogEvent("dialog_start"),
		OnDialogDone:  dialogEvent("dialog_done"),
		OnDialogClose: dialogEvent("dialog_close"),
		OnWindowShow: func(ctx context.Context, ev *domain.WindowEvent) {
			logger.DebugContext(ctx, "window_show",
				"intent", ev.IntentID,
				"state", ev.State,
				"op", ev.Operation,
				"duration", ev.Duration,
			)
		},
		OnEventError: func(ctx context.Context, ev domain.Event, err error) {
			kind := ""
			if ev != nil {
				kind = string(ev.Kind())
			}
			logger.WarnContext(ctx, "event_failed", "kind", kind, "err", err)
		},
	}
}
