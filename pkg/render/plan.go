package render

import "github.com/aretw0/chatdialog/pkg/domain"

// Op is the transport operation chosen for a render.
type Op string

const (
	OpNone          Op = "none"
	OpSend          Op = "send"
	OpEditText      Op = "edit_text"
	OpEditControls  Op = "edit_controls"
	OpDeleteAndSend Op = "delete_and_send"
)

// Plan is the outcome of Decide.
type Plan struct {
	Op Op
	// StripOld removes the controls of the previous message before sending a new one.
	StripOld bool
	Diff     domain.MessageDiff
}

// Decide picks the operation delivering msg given the remembered old message.
// fresh is true when the event that caused the render is an inbound user message.
func Decide(old *domain.OldMessage, msg *domain.NewMessage, fresh bool) Plan {
	if msg == nil {
		return Plan{Op: OpNone}
	}
	mode := msg.ShowMode
	if mode == "" {
		mode = domain.ShowAuto
	}
	if mode == domain.ShowNoUpdate {
		return Plan{Op: OpNone}
	}

	diff := domain.DiffMessage(old, msg)
	if old == nil {
		return Plan{Op: OpSend, Diff: diff}
	}

	switch {
	case mode == domain.ShowSend, mode == domain.ShowAuto && fresh, old.Chat != msg.Chat:
		return Plan{Op: OpSend, StripOld: old.HasKeyboard(), Diff: diff}
	case mode == domain.ShowDeleteAndSend:
		return Plan{Op: OpDeleteAndSend, Diff: diff}
	case diff.MediaChanged:
		return Plan{Op: OpSend, StripOld: old.HasKeyboard(), Diff: diff}
	case diff.IsEmpty():
		return Plan{Op: OpNone, Diff: diff}
	case !diff.TextChanged:
		return Plan{Op: OpEditControls, Diff: diff}
	default:
		return Plan{Op: OpEditText, Diff: diff}
	}
}
