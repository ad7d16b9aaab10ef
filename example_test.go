package chatdialog_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/chatdialog"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
)

// Example shows a two-window dialog driven by button presses over the in-memory transport.
func Example() {
	menu := domain.StatesGroup("menu")
	d := dialog.MustNew([]*dialog.Window{
		{
			State:    menu.State("main"),
			Text:     widget.Const("Main menu"),
			Keyboard: widget.Next(widget.Const("Settings"), "settings", nil),
		},
		{
			State:    menu.State("settings"),
			Text:     widget.Const("Settings"),
			Keyboard: widget.Back(widget.Const("Back"), "back", nil),
		},
	})

	registry, err := dialog.NewRegistry(d)
	if err != nil {
		log.Fatal(err)
	}
	transport := memory.NewTransport()
	eng, err := chatdialog.New(registry, transport)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	user := domain.Origin{Chat: domain.ChatKey{ChatID: "42"}, UserID: "7"}
	if err := eng.Start(ctx, user, menu, nil, domain.LaunchRoot); err != nil {
		log.Fatal(err)
	}

	last, _ := transport.Last(user.Chat)
	fmt.Println(last.Text)

	// Press the only button of the screen.
	press := &domain.CallbackEvent{Origin: user, MessageID: last.ID, Data: last.Keyboard[0][0].CallbackData}
	if err := eng.Handle(ctx, press); err != nil {
		log.Fatal(err)
	}

	last, _ = transport.Last(user.Chat)
	fmt.Println(last.Text)
	fmt.Println(len(transport.Messages(user.Chat)))
	// Output:
	// Main menu
	// Settings
	// 1
}
