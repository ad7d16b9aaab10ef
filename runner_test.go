package chatdialog_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/chatdialog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Conversation(t *testing.T) {
	eng, transport := newEngine(t)
	var out bytes.Buffer
	r := chatdialog.NewRunner()
	r.Input = strings.NewReader("Ada\n1\n")
	r.Output = &out

	require.NoError(t, r.Run(context.Background(), eng, transport, greet))

	got := out.String()
	assert.Contains(t, got, "What is your name?")
	assert.Contains(t, got, "Hello, Ada!")
	assert.Contains(t, got, "[1] Bye")
	assert.NotContains(t, got, "Bye!", "the loop ends because the dialog finished")
}

func TestRunner_ButtonByLabel(t *testing.T) {
	eng, transport := newEngine(t)
	var out bytes.Buffer
	r := chatdialog.NewRunner()
	r.Headless = true
	r.Input = strings.NewReader("Ada\nbye\n")
	r.Output = &out

	require.NoError(t, r.Run(context.Background(), eng, transport, greet))
	assert.Equal(t, "What is your name?\nHello, Ada!\n[1] Bye\n", out.String())
}

func TestRunner_Exit(t *testing.T) {
	eng, transport := newEngine(t)
	var out bytes.Buffer
	r := chatdialog.NewRunner()
	r.Input = strings.NewReader("exit\n")
	r.Output = &out

	require.NoError(t, r.Run(context.Background(), eng, transport, greet))
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunner_EOF(t *testing.T) {
	eng, transport := newEngine(t)
	r := chatdialog.NewRunner()
	r.Headless = true
	r.Input = strings.NewReader("")
	r.Output = &bytes.Buffer{}

	assert.NoError(t, r.Run(context.Background(), eng, transport, greet))
}

func TestRunner_Renderer(t *testing.T) {
	eng, transport := newEngine(t)
	var out bytes.Buffer
	r := chatdialog.NewRunner()
	r.Headless = true
	r.Renderer = func(s string) (string, error) { return strings.ToUpper(s), nil }
	r.Input = strings.NewReader("")
	r.Output = &out

	require.NoError(t, r.Run(context.Background(), eng, transport, greet))
	assert.Equal(t, "WHAT IS YOUR NAME?\n", out.String())
}

func TestRunner_JSON(t *testing.T) {
	eng, transport := newEngine(t)
	var out bytes.Buffer
	r := chatdialog.NewRunner()
	r.JSON = true
	r.Input = strings.NewReader("\"Ada\"\nBye\n")
	r.Output = &out

	require.NoError(t, r.Run(context.Background(), eng, transport, greet))

	var screens []chatdialog.Screen
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var s chatdialog.Screen
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &s), scanner.Text())
		screens = append(screens, s)
	}
	require.Len(t, screens, 2)
	assert.Equal(t, "What is your name?", screens[0].Text)
	assert.Empty(t, screens[0].Buttons)
	assert.Equal(t, "Hello, Ada!", screens[1].Text)
	assert.Equal(t, [][]string{{"Bye"}}, screens[1].Buttons)
	assert.NotEmpty(t, screens[1].ID)
}

func TestRunner_RequiresIO(t *testing.T) {
	eng, transport := newEngine(t)
	r := chatdialog.NewRunner()
	assert.Error(t, r.Run(context.Background(), eng, transport, greet))
}
