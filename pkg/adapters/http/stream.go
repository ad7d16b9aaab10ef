package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/domain"
)

// counter issues ids for simulated inbound events.
type counter struct {
	n atomic.Uint64
}

func (c *counter) next() string {
	return strconv.FormatUint(c.n.Add(1), 10)
}

// StreamManager fans transport operations out to SSE subscribers, per chat.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- []byte]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager. A nil logger uses slog.Default.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- []byte]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a subscriber for chat. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(chat domain.ChatKey) (<-chan []byte, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	key := chat.String()
	ch := make(chan []byte, 16)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- []byte]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[key]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, key)
			}
		}
	}
}

// Publish broadcasts call to the subscribers of chat.
// Its signature matches memory.WithOnChange.
func (sm *StreamManager) Publish(chat domain.ChatKey, call memory.Call) {
	payload, err := json.Marshal(eventView{
		Op:        string(call.Op),
		MessageID: call.MessageID,
		Text:      call.Text,
		Keyboard:  call.Keyboard,
		Media:     call.Media,
	})
	if err != nil {
		sm.logger.Error("SSE: encode failed", "err", err)
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers[chat.String()] {
		select {
		case ch <- payload:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "chat", chat.String())
		}
	}
}

// Subscribers reports how many subscribers chat has.
func (sm *StreamManager) Subscribers(chat domain.ChatKey) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[chat.String()])
}

type eventView struct {
	Op        string          `json:"op"`
	MessageID string          `json:"message_id"`
	Text      string          `json:"text,omitempty"`
	Keyboard  domain.Keyboard `json:"keyboard,omitempty"`
	Media     *domain.Media   `json:"media,omitempty"`
}

// SubscribeEvents handles GET /chats/{chat}/events (SSE).
// The optional ops query parameter keeps only the listed operations, e.g. ops=send,delete.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var ops map[string]bool
	if raw := r.URL.Query().Get("ops"); raw != "" {
		ops = make(map[string]bool)
		for _, op := range strings.Split(raw, ",") {
			ops[strings.TrimSpace(op)] = true
		}
	}

	chat := s.chat(r)
	ch, cancel := s.Streams.Subscribe(chat)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Subscribed", "chat", chat.String())

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "chat", chat.String())
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if ops != nil {
				var ev eventView
				if err := json.Unmarshal(msg, &ev); err == nil && !ops[ev.Op] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
