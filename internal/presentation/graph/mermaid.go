package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatdialog/pkg/loader"
)

// Overlay contains runtime state to highlight on the graph.
type Overlay struct {
	Visited []string
	Current string
}

type edge struct {
	from, to string
	label    string
	jump     bool
}

// GenerateMermaid produces a Mermaid flowchart of the dialogs in file.
// Every dialog is a subgraph of its windows, with semantic shapes:
// - First window: ((Circle))
// - Window reading text input: [/Parallelogram/]
// - Default: [Rectangle]
// - Dialog end (done, cancel, close): ([Stadium])
// Buttons and input actions become arrows; starting another dialog is a dotted jump.
func GenerateMermaid(file *loader.File, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var edges []edge
	for _, d := range file.Dialogs {
		if len(d.Windows) == 0 {
			continue
		}
		ends := false
		fmt.Fprintf(&sb, "    subgraph %s [\"%s\"]\n", sanitizeMermaidID(d.Group), d.Group)
		for i, w := range d.Windows {
			state := d.Group + ":" + w.Name
			opener, closer := "[", "]"
			switch {
			case i == 0:
				opener, closer = "((", "))"
			case w.Input != nil:
				opener, closer = "[/", "/]"
			}
			fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(state), opener, w.Name, closer)

			c := collector{dialog: d, index: i}
			if w.Input != nil {
				c.action(w.Input.Then, "input")
			}
			for _, spec := range w.Keyboard {
				c.widget(spec)
			}
			edges = append(edges, c.edges...)
			ends = ends || c.ends
		}
		if ends {
			fmt.Fprintf(&sb, "    %s([\"end\"])\n", endID(d.Group))
		}
		sb.WriteString("    end\n")
	}

	for _, e := range edges {
		arrow := "-->"
		if e.jump {
			arrow = "-.->"
		}
		if e.label != "" {
			safeLabel := strings.ReplaceAll(e.label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
			if e.jump {
				arrow = fmt.Sprintf("-. \"%s\" .->", safeLabel)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", e.from, arrow, e.to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, state := range overlay.Visited {
			safeID := sanitizeMermaidID(state)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

// collector gathers the arrows leaving one window.
type collector struct {
	dialog loader.DialogSpec
	index  int
	edges  []edge
	ends   bool
}

func (c *collector) from() string {
	return sanitizeMermaidID(c.dialog.Group + ":" + c.dialog.Windows[c.index].Name)
}

func (c *collector) window(offset int) (string, bool) {
	i := c.index + offset
	if i < 0 || i >= len(c.dialog.Windows) {
		return "", false
	}
	return sanitizeMermaidID(c.dialog.Group + ":" + c.dialog.Windows[i].Name), true
}

func (c *collector) add(to, label string, jump bool) {
	c.edges = append(c.edges, edge{from: c.from(), to: to, label: label, jump: jump})
}

func (c *collector) end(label string) {
	c.ends = true
	c.add(endID(c.dialog.Group), label, false)
}

func (c *collector) widget(spec loader.WidgetSpec) {
	label := spec.Text.Value
	if label == "" {
		label = spec.ID
	}
	switch spec.Type {
	case "row", "column", "group":
		for _, child := range spec.Children {
			c.widget(child)
		}
	case "next":
		if to, ok := c.window(1); ok {
			c.add(to, label, false)
		}
	case "back":
		if to, ok := c.window(-1); ok {
			c.add(to, label, false)
		}
	case "cancel", "done":
		c.end(label)
	case "switch":
		c.add(c.state(spec.State), label, false)
	case "start":
		c.add(first(spec.Group), label, true)
	case "checkbox", "radio", "select":
		c.action(spec.Then, spec.ID)
	}
}

// action draws the built-in actions of inputs and item clicks.
func (c *collector) action(src, label string) {
	verb, arg, _ := strings.Cut(src, ":")
	switch verb {
	case "next":
		if to, ok := c.window(1); ok {
			c.add(to, label, false)
		}
	case "back":
		if to, ok := c.window(-1); ok {
			c.add(to, label, false)
		}
	case "done", "close":
		c.end(label)
	case "switch":
		c.add(c.state(arg), label, false)
	case "start":
		c.add(first(arg), label, true)
	}
}

func (c *collector) state(ref string) string {
	if !strings.Contains(ref, ":") {
		ref = c.dialog.Group + ":" + ref
	}
	return sanitizeMermaidID(ref)
}

// first addresses a dialog by its subgraph, its first window is not known here.
func first(group string) string {
	return sanitizeMermaidID(group)
}

func endID(group string) string {
	return sanitizeMermaidID(group) + "__end"
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "__")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
