package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/chatdialog"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultWrap = 80

var bannerLines = []string{
	"┌─┐┬ ┬┌─┐┌┬┐┌┬┐┬┌─┐┬  ┌─┐┌─┐",
	"│  ├─┤├─┤ │  │││├─┤│  │ ││ ┬",
	"└─┘┴ ┴┴ ┴ ┴ ─┴┘┴┴ ┴┴─┘└─┘└─┘",
}

var bannerColors = []string{"#818cf8", "#c084fc", "#f472b6"}

// PrintBanner writes the ASCII banner and the version to w,
// colored when w supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(" "+line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, out.String(fmt.Sprintf(" v%s", strings.TrimSpace(version))).Faint())
	fmt.Fprintln(w)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a markdown renderer sized to out,
// or nil when out is not a terminal and text should be printed as is.
func NewRenderer(out io.Writer) chatdialog.ContentRenderer {
	if !IsTerminal(out) {
		return nil
	}
	width := defaultWrap
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return newMarkdownRenderer(width)
}

func newMarkdownRenderer(width int) chatdialog.ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r.Render
}
