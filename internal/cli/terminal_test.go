package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")

	out := buf.String()
	for _, line := range bannerLines {
		assert.Contains(t, out, line)
	}
	assert.Contains(t, out, "v1.2.3")
}

func TestNewRenderer_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Nil(t, NewRenderer(&buf))
}

func TestMarkdownRenderer(t *testing.T) {
	render := newMarkdownRenderer(40)
	require.NotNil(t, render)

	out, err := render("**Hello** world")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "world")
}
