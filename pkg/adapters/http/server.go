// Package http exposes a chat simulator over HTTP.
//
// Every chat lives in an in-memory transport. Clients start dialogs, send messages
// and press buttons through JSON endpoints, read the resulting screens back and can
// follow transport operations over server-sent events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/input"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine is the part of the dialog engine the server drives.
type Engine interface {
	Handle(ctx context.Context, ev domain.Event) error
	Start(ctx context.Context, origin domain.Origin, group domain.StatesGroup, data map[string]any, mode domain.LaunchMode) error
	Registry() *dialog.Registry
}

// Server serves the simulator endpoints.
type Server struct {
	Engine  Engine
	View    *memory.Transport
	Streams *StreamManager

	botID   string
	version string
	logger  *slog.Logger
	seq     counter
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager, usually the one fed by the transport.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithBotID sets the bot id of every chat key. Defaults to "http".
func WithBotID(id string) Option {
	return func(s *Server) {
		s.botID = id
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server over engine. view must be the transport the engine delivers to.
func NewServer(engine Engine, view *memory.Transport, opts ...Option) *Server {
	s := &Server{
		Engine:  engine,
		View:    view,
		botID:   "http",
		version: "unknown",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine Engine, view *memory.Transport, opts ...Option) http.Handler {
	return NewServer(engine, view, opts...).Routes()
}

// Routes returns the router of the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/dialogs", s.GetDialogs)

	r.Route("/chats/{chat}", func(r chi.Router) {
		r.Get("/messages", s.GetMessages)
		r.Get("/events", s.SubscribeEvents)
		r.Route("/users/{user}", func(r chi.Router) {
			r.Post("/start", s.Start)
			r.Post("/messages", s.SendMessage)
			r.Post("/callbacks", s.PressButton)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartRequest is the body of POST /chats/{chat}/users/{user}/start.
type StartRequest struct {
	Group string            `json:"group"`
	Data  map[string]any    `json:"data,omitempty"`
	Mode  domain.LaunchMode `json:"mode,omitempty"`
}

// MessageRequest is the body of POST /chats/{chat}/users/{user}/messages.
type MessageRequest struct {
	Text         string        `json:"text"`
	Media        *domain.Media `json:"media,omitempty"`
	MediaGroupID string        `json:"media_group_id,omitempty"`
}

// CallbackRequest is the body of POST /chats/{chat}/users/{user}/callbacks.
// Data is the raw callback data; Button selects a button of the last message by label.
type CallbackRequest struct {
	Data   string `json:"data,omitempty"`
	Button string `json:"button,omitempty"`
}

// MessageView is a delivered message as returned by the API.
type MessageView struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Keyboard domain.Keyboard `json:"keyboard,omitempty"`
	Media    *domain.Media   `json:"media,omitempty"`
}

// ChatResponse lists the messages of a chat in delivery order.
type ChatResponse struct {
	Messages []MessageView `json:"messages"`
}

// DialogView describes a registered dialog.
type DialogView struct {
	Group      string            `json:"group"`
	LaunchMode domain.LaunchMode `json:"launch_mode,omitempty"`
	Windows    []domain.State    `json:"windows"`
}

func (s *Server) origin(r *http.Request) domain.Origin {
	return domain.Origin{
		Chat:   s.chat(r),
		UserID: chi.URLParam(r, "user"),
	}
}

func (s *Server) chat(r *http.Request) domain.ChatKey {
	return domain.ChatKey{BotID: s.botID, ChatID: chi.URLParam(r, "chat")}
}

// Start handles POST /chats/{chat}/users/{user}/start.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Start: Invalid request body", "err", err)
		return
	}
	origin := s.origin(r)
	err := s.Engine.Start(r.Context(), origin, domain.StatesGroup(body.Group), body.Data, body.Mode)
	s.respond(w, r, origin.Chat, err)
}

// SendMessage handles POST /chats/{chat}/users/{user}/messages.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SendMessage: Invalid request body", "err", err)
		return
	}
	origin := s.origin(r)
	err := s.Engine.Handle(r.Context(), &domain.MessageEvent{
		Origin:       origin,
		MessageID:    "in-" + s.seq.next(),
		Text:         body.Text,
		Media:        body.Media,
		MediaGroupID: body.MediaGroupID,
	})
	s.respond(w, r, origin.Chat, err)
}

// PressButton handles POST /chats/{chat}/users/{user}/callbacks.
func (s *Server) PressButton(w http.ResponseWriter, r *http.Request) {
	var body CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PressButton: Invalid request body", "err", err)
		return
	}
	origin := s.origin(r)

	ev := &domain.CallbackEvent{Origin: origin, ID: "cb-" + s.seq.next(), Data: body.Data}
	if body.Button != "" {
		last, ok := s.View.Last(origin.Chat)
		if !ok {
			http.Error(w, "No message to press a button on", http.StatusNotFound)
			return
		}
		data, found := findButton(last.Keyboard, body.Button)
		if !found {
			http.Error(w, fmt.Sprintf("No button %q on the last message", body.Button), http.StatusNotFound)
			return
		}
		ev.MessageID = last.ID
		ev.Data = data
	}
	if ev.Data == "" {
		http.Error(w, "Either data or button is required", http.StatusBadRequest)
		return
	}

	s.respond(w, r, origin.Chat, s.Engine.Handle(r.Context(), ev))
}

func findButton(k domain.Keyboard, label string) (string, bool) {
	for _, row := range k {
		for _, b := range row {
			if b.CallbackData != "" && strings.EqualFold(b.Text, label) {
				return b.CallbackData, true
			}
		}
	}
	return "", false
}

// GetMessages handles GET /chats/{chat}/messages.
func (s *Server) GetMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chatResponse(s.chat(r)), s.logger)
}

// GetDialogs handles GET /dialogs.
func (s *Server) GetDialogs(w http.ResponseWriter, r *http.Request) {
	registry := s.Engine.Registry()
	views := make([]DialogView, 0)
	for _, group := range registry.Groups() {
		d, err := registry.Find(group)
		if err != nil {
			continue
		}
		view := DialogView{Group: string(group), LaunchMode: d.LaunchMode()}
		for _, win := range d.Windows() {
			view.Windows = append(view.Windows, win.State)
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views, s.logger)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "chatdialog-http",
		"version": s.version,
	}, s.logger)
}

func (s *Server) chatResponse(chat domain.ChatKey) ChatResponse {
	msgs := s.View.Messages(chat)
	resp := ChatResponse{Messages: make([]MessageView, len(msgs))}
	for i, m := range msgs {
		resp.Messages[i] = MessageView{ID: m.ID, Text: m.Text, Keyboard: m.Keyboard, Media: m.Media}
	}
	return resp
}

// respond writes the chat after a successful event, or maps err to a status.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, chat domain.ChatKey, err error) {
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Event failed", "path", r.URL.Path, "err", err)
		} else {
			s.logger.Debug("Event rejected", "path", r.URL.Path, "status", status, "err", err)
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, s.chatResponse(chat), s.logger)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownIntent),
		errors.Is(err, domain.ErrOutdatedIntent),
		errors.Is(err, domain.ErrExclusiveStack):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoContext),
		errors.Is(err, domain.ErrUnregisteredDialog),
		errors.Is(err, domain.ErrUnregisteredWindow):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, input.ErrTooLarge),
		errors.Is(err, input.ErrInvalidUTF8),
		errors.Is(err, domain.ErrIncorrectBackground),
		errors.Is(err, domain.ErrNavigation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
