package chatdialog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/domain"
)

// Runner drives an Engine from a line-oriented terminal.
// It shows the last screen of the chat with numbered buttons, turns a number or a
// button label into a button press and sends any other text as a user message.
//
// In JSON mode every screen is written as one JSON object per line and input lines
// may be JSON strings, so other programs can drive the chat.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	JSON     bool
	Renderer ContentRenderer
	Origin   domain.Origin
}

// Screen is the JSON-lines rendering of a chat message.
type Screen struct {
	ID      string        `json:"id"`
	Text    string        `json:"text"`
	Buttons [][]string    `json:"buttons,omitempty"`
	Media   *domain.Media `json:"media,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ContentRenderer transforms window text before it is printed,
// e.g. markdown to ANSI, without coupling the core package to a terminal library.
type ContentRenderer func(string) (string, error)

// DefaultOrigin is the chat used by runners without an explicit Origin.
var DefaultOrigin = domain.Origin{
	Chat:   domain.ChatKey{BotID: "terminal", ChatID: "local"},
	UserID: "local",
}

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{Origin: DefaultOrigin}
}

// Run starts entry (when not empty) and loops until the stack is empty,
// the input ends or the user types exit.
// view must be the transport the engine delivers to.
func (r *Runner) Run(ctx context.Context, eng *Engine, view *memory.Transport, entry domain.StatesGroup) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if view == nil {
		return fmt.Errorf("view transport is required")
	}
	origin := r.Origin
	if !origin.Chat.Valid() {
		origin = DefaultOrigin
	}
	lineReader := bufio.NewReader(r.Input)
	writer := r.Output

	if entry != "" {
		if err := eng.Start(ctx, origin, entry, nil, domain.LaunchRoot); err != nil {
			return fmt.Errorf("start error: %w", err)
		}
	}

	interactive := !r.Headless && !r.JSON
	if interactive {
		fmt.Fprintln(writer, "--- chatdialog ---")
	}

	key := domain.DefaultStackKey(origin.Chat, origin.UserID)
	var shown memory.Message
	seq := 0

	for {
		// 1. Render
		stack, err := eng.Stack(ctx, key)
		if err != nil {
			return fmt.Errorf("load stack: %w", err)
		}
		if stack.Empty() {
			break
		}

		last, ok := view.Last(origin.Chat)
		if ok && !sameScreen(shown, last) {
			if err := r.print(writer, last); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			shown = last
		}

		// 2. Input
		if interactive {
			fmt.Fprint(writer, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)
		if input == "" && errors.Is(err, io.EOF) {
			break
		}
		if r.JSON {
			input = unquote(input)
		}
		if input == "exit" || input == "quit" {
			if interactive {
				fmt.Fprintln(writer, "Bye!")
			}
			break
		}

		// 3. Dispatch
		seq++
		var ev domain.Event
		if button, found := pick(last.Keyboard, input); found && ok {
			if button.URL != "" {
				fmt.Fprintln(writer, button.URL)
				continue
			}
			ev = &domain.CallbackEvent{
				Origin:    origin,
				ID:        "t" + strconv.Itoa(seq),
				MessageID: last.ID,
				Data:      button.CallbackData,
			}
		} else {
			ev = &domain.MessageEvent{
				Origin:    origin,
				MessageID: "u" + strconv.Itoa(seq),
				Text:      input,
			}
		}

		if err := eng.Handle(ctx, ev); err != nil {
			switch {
			case IsExpired(err):
				r.notice(writer, "expired")
			case IsNoDialog(err):
				return nil
			default:
				return fmt.Errorf("handle error: %w", err)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return nil
}

func (r *Runner) print(w io.Writer, msg memory.Message) error {
	if r.JSON {
		screen := Screen{ID: msg.ID, Text: msg.Text, Media: msg.Media}
		for _, row := range msg.Keyboard {
			labels := make([]string, 0, len(row))
			for _, b := range row {
				labels = append(labels, b.Text)
			}
			if len(labels) > 0 {
				screen.Buttons = append(screen.Buttons, labels)
			}
		}
		return json.NewEncoder(w).Encode(screen)
	}

	output := msg.Text
	if r.Renderer != nil {
		if rendered, err := r.Renderer(msg.Text); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(w, strings.TrimSpace(output))
	if msg.Media != nil {
		fmt.Fprintf(w, "[%s] %s%s\n", msg.Media.Type, msg.Media.URL, msg.Media.Path)
	}

	n := 0
	for _, row := range msg.Keyboard {
		labels := make([]string, 0, len(row))
		for _, b := range row {
			n++
			labels = append(labels, fmt.Sprintf("[%d] %s", n, b.Text))
		}
		if len(labels) > 0 {
			fmt.Fprintln(w, strings.Join(labels, "  "))
		}
	}
	return nil
}

func (r *Runner) notice(w io.Writer, text string) {
	if r.JSON {
		_ = json.NewEncoder(w).Encode(Screen{Error: text})
		return
	}
	fmt.Fprintln(w, text)
}

// unquote accepts a JSON string and falls back to the raw line.
func unquote(line string) string {
	var s string
	if err := json.Unmarshal([]byte(line), &s); err == nil {
		return strings.TrimSpace(s)
	}
	return line
}

// pick resolves input to a button by its 1-based position or its label.
func pick(k domain.Keyboard, input string) (domain.Button, bool) {
	var flat []domain.Button
	for _, row := range k {
		flat = append(flat, row...)
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(flat) {
		return flat[n-1], true
	}
	for _, b := range flat {
		if strings.EqualFold(b.Text, input) {
			return b, true
		}
	}
	return domain.Button{}, false
}

func sameScreen(a, b memory.Message) bool {
	return a.ID == b.ID && a.Text == b.Text && a.Keyboard.Equal(b.Keyboard) && a.Media.Same(b.Media)
}
