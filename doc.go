/*
Package chatdialog is a dialog engine for chat bots built on inline buttons.

A conversation is modelled as a stack of dialogs. Each dialog is a set of windows,
screens made of text, optional media and a keyboard of widgets, that share one
states group. Starting a dialog pushes a context on the user's stack, finishing it
pops the context and hands a result to the dialog underneath. After every event the
engine renders the window on top and decides whether to send a new message, edit the
last one in place or leave it alone.

# Architecture

The engine is hexagonal. Dialog logic lives in pkg/dialog and pkg/widget, the
navigation state machine in internal/runtime, and the outside world is reached
through the ports in pkg/ports:

  - Storage persists stacks and contexts (memory, files, Redis, SQLite, PostgreSQL).
  - Transport delivers rendered screens to a chat (memory, HTTP simulator, MCP).
  - DistributedLocker serializes events of one conversation across replicas.

# Usage

	menu := domain.StatesGroup("menu")

	hello := dialog.MustNew([]*dialog.Window{{
		State:    menu.State("main"),
		Text:     widget.Const("Hello!"),
		Keyboard: widget.Row(widget.Cancel(widget.Const("Close"), "close", nil)),
	}})

	registry, _ := dialog.NewRegistry(hello)
	eng, _ := chatdialog.New(registry, myTransport)

	// Start the dialog for a user, then feed it every inbound event.
	_ = eng.Start(ctx, origin, menu, nil, domain.LaunchRoot)
	_ = eng.Handle(ctx, &domain.CallbackEvent{Origin: origin, Data: pressedButtonData})
*/
package chatdialog
