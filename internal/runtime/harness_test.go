package runtime_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/chatdialog/internal/runtime"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/session"
	"github.com/stretchr/testify/require"
)

// harness drives an engine over in-memory storage and transport for one user.
type harness struct {
	engine    *runtime.Engine
	store     *memory.Store
	transport *memory.Transport
	origin    domain.Origin
	trace     *[]string
}

func newHarness(t *testing.T, build func(trace *[]string) []*dialog.Dialog, opts ...runtime.EngineOption) *harness {
	t.Helper()
	trace := &[]string{}
	registry, err := dialog.NewRegistry(build(trace)...)
	require.NoError(t, err)

	seq := 0
	store := memory.NewStore()
	transport := memory.NewTransport(memory.WithOnChange(func(_ domain.ChatKey, c memory.Call) {
		*trace = append(*trace, "transport:"+string(c.Op))
	}))
	opts = append([]runtime.EngineOption{
		runtime.WithIDGenerator(domain.IDGeneratorFunc(func() string {
			seq++
			return fmt.Sprintf("i%d", seq)
		})),
	}, opts...)

	return &harness{
		engine:    runtime.NewEngine(registry, session.NewManager(store), transport, opts...),
		store:     store,
		transport: transport,
		origin:    domain.Origin{Chat: domain.ChatKey{BotID: "bot", ChatID: "chat1"}, UserID: "u1"},
		trace:     trace,
	}
}

func (h *harness) start(state domain.State, mode domain.LaunchMode) error {
	return h.engine.Handle(context.Background(), &domain.UpdateEvent{
		Origin: h.origin,
		Action: domain.ActionStart,
		State:  state,
		Mode:   mode,
	})
}

// click presses the button of the last message whose payload is payload.
func (h *harness) click(t *testing.T, payload string) error {
	t.Helper()
	last, ok := h.transport.Last(h.origin.Chat)
	require.True(t, ok, "no message to click on")
	for _, row := range last.Keyboard {
		for _, b := range row {
			if strings.HasSuffix(b.CallbackData, dialog.CallbackSeparator+payload) {
				return h.press(b.CallbackData)
			}
		}
	}
	t.Fatalf("no button %q in %v", payload, last.Keyboard)
	return nil
}

func (h *harness) press(data string) error {
	return h.engine.Handle(context.Background(), &domain.CallbackEvent{
		Origin: h.origin,
		ID:     "cb",
		Data:   data,
	})
}

func (h *harness) say(text string) error {
	return h.engine.Handle(context.Background(), &domain.MessageEvent{Origin: h.origin, Text: text})
}

func (h *harness) stack(t *testing.T) *domain.Stack {
	t.Helper()
	s, err := h.store.LoadStack(context.Background(), domain.DefaultStackKey(h.origin.Chat, h.origin.UserID))
	require.NoError(t, err)
	return s
}

func (h *harness) top(t *testing.T) *domain.Context {
	t.Helper()
	id, ok := h.stack(t).Current()
	require.True(t, ok, "stack is empty")
	c, err := h.store.LoadContext(context.Background(), h.origin.Chat, id)
	require.NoError(t, err)
	return c
}

func (h *harness) lastText(t *testing.T) string {
	t.Helper()
	last, ok := h.transport.Last(h.origin.Chat)
	require.True(t, ok)
	return last.Text
}

func (h *harness) ops() []memory.Operation {
	var ops []memory.Operation
	for _, c := range h.transport.Calls() {
		ops = append(ops, c.Op)
	}
	return ops
}
