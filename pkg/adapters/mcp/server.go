// Package mcp exposes a chat simulator as Model Context Protocol tools,
// so an agent can start dialogs, type messages and press buttons.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DialogsURI is the resource listing the registered dialogs.
const DialogsURI = "chatdialog://dialogs"

// Engine is the part of the dialog engine the server drives.
type Engine interface {
	Handle(ctx context.Context, ev domain.Event) error
	Start(ctx context.Context, origin domain.Origin, group domain.StatesGroup, data map[string]any, mode domain.LaunchMode) error
	Registry() *dialog.Registry
}

// MessageView is a delivered message.
type MessageView struct {
	ID       string          `json:"id" jsonschema_description:"Transport id of the message"`
	Text     string          `json:"text" jsonschema_description:"Rendered text"`
	Buttons  []string        `json:"buttons" jsonschema_description:"Labels of the buttons, row by row"`
	Keyboard domain.Keyboard `json:"keyboard,omitempty" jsonschema_description:"Full keyboard with callback data"`
	Media    *domain.Media   `json:"media,omitempty" jsonschema_description:"Attachment, if any"`
}

// ChatResponse is the structured result of every chat tool.
type ChatResponse struct {
	Chat     string        `json:"chat" jsonschema_description:"Chat id"`
	Messages []MessageView `json:"messages" jsonschema_description:"Messages of the chat in delivery order"`
}

// StartArgs are the arguments of start_dialog.
type StartArgs struct {
	Chat  string `json:"chat"`
	User  string `json:"user"`
	Group string `json:"group"`
	Mode  string `json:"mode,omitempty"`
	Data  string `json:"data,omitempty"`
}

// MessageArgs are the arguments of send_message.
type MessageArgs struct {
	Chat string `json:"chat"`
	User string `json:"user"`
	Text string `json:"text"`
}

// ButtonArgs are the arguments of press_button.
type ButtonArgs struct {
	Chat   string `json:"chat"`
	User   string `json:"user"`
	Button string `json:"button,omitempty"`
	Data   string `json:"data,omitempty"`
}

// ChatArgs are the arguments of get_chat.
type ChatArgs struct {
	Chat string `json:"chat"`
}

// Server wraps the dialog engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	view      *memory.Transport
	botID     string
	logger    *slog.Logger
	seq       atomic.Int64
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithBotID sets the bot id of every chat key. Defaults to "mcp".
func WithBotID(id string) Option {
	return func(s *Server) {
		s.botID = id
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance. view must be the transport the engine delivers to.
func NewServer(engine Engine, view *memory.Transport, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		view:      view,
		botID:     "mcp",
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("chatdialog-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_dialog",
		mcp.WithDescription("Start a dialog for a user. Mode is one of standard, root, exclusive, single_top."),
		mcp.WithString("chat", mcp.Required(), mcp.Description("Chat id")),
		mcp.WithString("user", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("group", mcp.Required(), mcp.Description("States group of the dialog")),
		mcp.WithString("mode", mcp.Description("Launch mode (optional)")),
		mcp.WithString("data", mcp.Description("JSON object passed as start data (optional)")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a text message as the user."),
		mcp.WithString("chat", mcp.Required(), mcp.Description("Chat id")),
		mcp.WithString("user", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleMessage))

	s.mcpServer.AddTool(mcp.NewTool("press_button",
		mcp.WithDescription("Press a button of the last message, by label or by raw callback data."),
		mcp.WithString("chat", mcp.Required(), mcp.Description("Chat id")),
		mcp.WithString("user", mcp.Required(), mcp.Description("User id")),
		mcp.WithString("button", mcp.Description("Button label")),
		mcp.WithString("data", mcp.Description("Raw callback data")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleButton))

	s.mcpServer.AddTool(mcp.NewTool("get_chat",
		mcp.WithDescription("Read the messages of a chat."),
		mcp.WithString("chat", mcp.Required(), mcp.Description("Chat id")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleChat))

	s.mcpServer.AddTool(mcp.NewTool("list_dialogs",
		mcp.WithDescription("List the registered dialogs and their windows."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := s.dialogsJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DialogsURI, "Registered Dialogs",
		mcp.WithMIMEType("application/json"),
	), s.readDialogs)
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args StartArgs) (ChatResponse, error) {
	var data map[string]any
	if args.Data != "" {
		if err := json.Unmarshal([]byte(args.Data), &data); err != nil {
			return ChatResponse{}, fmt.Errorf("invalid data: %w", err)
		}
	}
	origin := s.origin(args.Chat, args.User)
	err := s.engine.Start(ctx, origin, domain.StatesGroup(args.Group), data, domain.LaunchMode(args.Mode))
	if err != nil {
		s.logger.Debug("MCP start rejected", "group", args.Group, "err", err)
		return ChatResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return s.chatResponse(origin.Chat), nil
}

func (s *Server) handleMessage(ctx context.Context, request mcp.CallToolRequest, args MessageArgs) (ChatResponse, error) {
	origin := s.origin(args.Chat, args.User)
	err := s.engine.Handle(ctx, &domain.MessageEvent{
		Origin:    origin,
		MessageID: "mcp-" + s.next(),
		Text:      args.Text,
	})
	if err != nil {
		s.logger.Debug("MCP message rejected", "chat", args.Chat, "err", err)
		return ChatResponse{}, fmt.Errorf("message failed: %w", err)
	}
	return s.chatResponse(origin.Chat), nil
}

func (s *Server) handleButton(ctx context.Context, request mcp.CallToolRequest, args ButtonArgs) (ChatResponse, error) {
	origin := s.origin(args.Chat, args.User)
	ev := &domain.CallbackEvent{Origin: origin, ID: "mcp-" + s.next(), Data: args.Data}
	if args.Button != "" {
		last, ok := s.view.Last(origin.Chat)
		if !ok {
			return ChatResponse{}, fmt.Errorf("chat %q has no messages", args.Chat)
		}
		data, found := findButton(last.Keyboard, args.Button)
		if !found {
			return ChatResponse{}, fmt.Errorf("no button %q on the last message", args.Button)
		}
		ev.MessageID = last.ID
		ev.Data = data
	}
	if ev.Data == "" {
		return ChatResponse{}, fmt.Errorf("either button or data is required")
	}
	if err := s.engine.Handle(ctx, ev); err != nil {
		s.logger.Debug("MCP callback rejected", "chat", args.Chat, "err", err)
		return ChatResponse{}, fmt.Errorf("press failed: %w", err)
	}
	return s.chatResponse(origin.Chat), nil
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args ChatArgs) (ChatResponse, error) {
	return s.chatResponse(s.origin(args.Chat, "").Chat), nil
}

func (s *Server) readDialogs(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := s.dialogsJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to list dialogs: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DialogsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

type dialogView struct {
	Group      string            `json:"group"`
	LaunchMode domain.LaunchMode `json:"launch_mode,omitempty"`
	Windows    []domain.State    `json:"windows"`
}

func (s *Server) dialogsJSON() ([]byte, error) {
	registry := s.engine.Registry()
	views := make([]dialogView, 0)
	for _, group := range registry.Groups() {
		d, err := registry.Find(group)
		if err != nil {
			return nil, err
		}
		view := dialogView{Group: string(group), LaunchMode: d.LaunchMode()}
		for _, win := range d.Windows() {
			view.Windows = append(view.Windows, win.State)
		}
		views = append(views, view)
	}
	return json.Marshal(views)
}

func (s *Server) origin(chat, user string) domain.Origin {
	return domain.Origin{
		Chat:   domain.ChatKey{BotID: s.botID, ChatID: chat},
		UserID: user,
	}
}

func (s *Server) next() string {
	return strconv.FormatInt(s.seq.Add(1), 10)
}

func (s *Server) chatResponse(chat domain.ChatKey) ChatResponse {
	msgs := s.view.Messages(chat)
	resp := ChatResponse{Chat: chat.ChatID, Messages: make([]MessageView, len(msgs))}
	for i, m := range msgs {
		view := MessageView{ID: m.ID, Text: m.Text, Buttons: []string{}, Keyboard: m.Keyboard, Media: m.Media}
		for _, row := range m.Keyboard {
			for _, b := range row {
				view.Buttons = append(view.Buttons, b.Text)
			}
		}
		resp.Messages[i] = view
	}
	return resp
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
