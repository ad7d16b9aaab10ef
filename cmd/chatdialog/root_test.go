package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/chatdialog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "chatdialog version "+strings.TrimSpace(chatdialog.Version)+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("..", "..", "pkg", "loader", "testdata", "onboarding.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "onboarding (3 windows)\nsettings (1 windows)\nDialogs are valid! ✅\n", out)
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialogs:
  - group: broken
    windows:
      - name: main
        text: Hi
        keyboard:
          - type: teleport
            id: go
`), 0o644))

	_, err := execute(t, "validate", path)
	assert.ErrorContains(t, err, "validation failed")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph", filepath.Join("..", "..", "pkg", "loader", "testdata", "onboarding.yaml"),
		"--current", "onboarding:pick")
	require.NoError(t, err)
	assert.Contains(t, out, `onboarding__ask -- "input" --> onboarding__pick`)
	assert.Contains(t, out, `onboarding__summary -. "More" .-> settings`)
	assert.Contains(t, out, "class onboarding__pick current;")
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"chat", "graph", "serve", "mcp", "validate", "version"} {
		assert.Contains(t, names, want)
	}
}
