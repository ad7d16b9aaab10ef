package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/chatdialog"
	chathttp "github.com/aretw0/chatdialog/pkg/adapters/http"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) (http.Handler, *chathttp.StreamManager) {
	t.Helper()
	menu := domain.StatesGroup("menu")
	d := dialog.MustNew([]*dialog.Window{
		{
			State:    menu.State("main"),
			Text:     widget.Const("Main"),
			Keyboard: widget.Next(widget.Const("Next"), "next", nil),
			OnMessage: func(ctx context.Context, msg *domain.MessageEvent, m widget.Manager) error {
				return m.Next(ctx)
			},
		},
		{
			State:    menu.State("second"),
			Text:     widget.Const("Second"),
			Keyboard: widget.Back(widget.Const("Back"), "back", nil),
		},
	}, dialog.WithLaunchMode(domain.LaunchRoot))
	registry, err := dialog.NewRegistry(d)
	require.NoError(t, err)

	streams := chathttp.NewStreamManager(nil)
	transport := memory.NewTransport(memory.WithOnChange(streams.Publish))
	eng, err := chatdialog.New(registry, transport)
	require.NoError(t, err)

	return chathttp.NewHandler(eng, transport, chathttp.WithStreams(streams), chathttp.WithVersion("1.2.3\n")), streams
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeChat(t *testing.T, w *httptest.ResponseRecorder) chathttp.ChatResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp chathttp.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newHandler(t)

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", nil)
	assert.JSONEq(t, `{"app":"chatdialog-http","version":"1.2.3"}`, w.Body.String())

	w = do(t, h, http.MethodOptions, "/health", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetDialogs(t *testing.T) {
	h, _ := newHandler(t)

	w := do(t, h, http.MethodGet, "/dialogs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var views []chathttp.DialogView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "menu", views[0].Group)
	assert.Equal(t, domain.LaunchRoot, views[0].LaunchMode)
	assert.Equal(t, []domain.State{"menu:main", "menu:second"}, views[0].Windows)
}

func TestConversation(t *testing.T) {
	h, _ := newHandler(t)

	resp := decodeChat(t, do(t, h, http.MethodPost, "/chats/c1/users/u1/start", chathttp.StartRequest{Group: "menu"}))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "Main", resp.Messages[0].Text)

	resp = decodeChat(t, do(t, h, http.MethodPost, "/chats/c1/users/u1/callbacks", chathttp.CallbackRequest{Button: "next"}))
	require.Len(t, resp.Messages, 1, "button presses edit in place")
	assert.Equal(t, "Second", resp.Messages[0].Text)
	back := resp.Messages[0].Keyboard[0][0].CallbackData

	resp = decodeChat(t, do(t, h, http.MethodPost, "/chats/c1/users/u1/callbacks", chathttp.CallbackRequest{Data: back}))
	assert.Equal(t, "Main", resp.Messages[0].Text)

	resp = decodeChat(t, do(t, h, http.MethodPost, "/chats/c1/users/u1/messages", chathttp.MessageRequest{Text: "hi"}))
	require.Len(t, resp.Messages, 2, "user messages are answered below")
	assert.Equal(t, "Second", resp.Messages[1].Text)
	assert.Empty(t, resp.Messages[0].Keyboard, "the old screen loses its controls")

	resp = decodeChat(t, do(t, h, http.MethodGet, "/chats/c1/messages", nil))
	assert.Len(t, resp.Messages, 2)
}

func TestErrors(t *testing.T) {
	h, _ := newHandler(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown dialog", "/chats/c1/users/u1/start", chathttp.StartRequest{Group: "ghost"}, http.StatusNotFound},
		{"no dialog", "/chats/c1/users/u1/messages", chathttp.MessageRequest{Text: "hi"}, http.StatusNotFound},
		{"no message to press", "/chats/c1/users/u1/callbacks", chathttp.CallbackRequest{Button: "Next"}, http.StatusNotFound},
		{"empty press", "/chats/c1/users/u1/callbacks", chathttp.CallbackRequest{}, http.StatusBadRequest},
		{"unknown intent", "/chats/c1/users/u1/callbacks", chathttp.CallbackRequest{Data: "nope\x1dnext"}, http.StatusConflict},
		{"invalid body", "/chats/c1/users/u1/start", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestSubscribeEvents(t *testing.T) {
	h, streams := newHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/chats/c1/events?ops=send", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	chat := domain.ChatKey{BotID: "http", ChatID: "c1"}
	require.Eventually(t, func() bool { return streams.Subscribers(chat) == 1 }, time.Second, 10*time.Millisecond)

	decodeChat(t, do(t, h, http.MethodPost, "/chats/c1/users/u1/start", chathttp.StartRequest{Group: "menu"}))
	decodeChat(t, do(t, h, http.MethodPost, "/chats/c1/users/u1/callbacks", chathttp.CallbackRequest{Button: "Next"}))
	decodeChat(t, do(t, h, http.MethodPost, "/chats/c1/users/u1/messages", chathttp.MessageRequest{Text: "hi"}))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(events) < 2 {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: {") {
			events = append(events, strings.TrimPrefix(line, "data: "))
		}
	}
	require.Len(t, events, 2, "edits are filtered out")
	assert.Contains(t, events[0], `"op":"send"`)
	assert.Contains(t, events[0], `"text":"Main"`)
	assert.Contains(t, events[1], `"text":"Second"`)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	sm := chathttp.NewStreamManager(nil)
	chat := domain.ChatKey{ChatID: "c"}

	ch, cancel := sm.Subscribe(chat)
	assert.Equal(t, 1, sm.Subscribers(chat))

	sm.Publish(chat, memory.Call{Op: memory.OpDelete, MessageID: "7"})
	assert.JSONEq(t, `{"op":"delete","message_id":"7"}`, string(<-ch))

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers(chat))
	_, open := <-ch
	assert.False(t, open)
}
