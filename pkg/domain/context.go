package domain

// DataScope selects which mapping of a Context is accessed.
type DataScope int

const (
	// ScopeDialog addresses data owned by application handlers.
	ScopeDialog DataScope = iota
	// ScopeWidget addresses data owned by widgets (toggle flags, selections).
	ScopeWidget
)

// Context is the mutable state bound to an Intent.
// It is created when the intent is pushed and cleared when it is popped.
type Context struct {
	IntentID string `json:"intent_id"`
	// StackID is a back-reference only; the stack never owns the context.
	StackID        string          `json:"stack_id"`
	State          State           `json:"state"`
	StartData      map[string]any  `json:"start_data,omitempty"`
	DialogData     map[string]any  `json:"dialog_data"`
	WidgetData     map[string]any  `json:"widget_data"`
	AccessSettings *AccessSettings `json:"access_settings,omitempty"`

	cleared bool
}

// NewContext creates an empty context for the given intent.
func NewContext(intentID, stackID string, state State, startData map[string]any) *Context {
	return &Context{
		IntentID:   intentID,
		StackID:    stackID,
		State:      state,
		StartData:  copyMap(startData),
		DialogData: make(map[string]any),
		WidgetData: make(map[string]any),
	}
}

// Intent projects the identity of the dialog instance owning this context.
func (c *Context) Intent() Intent {
	return Intent{
		ID:         c.IntentID,
		DialogName: c.State.Group(),
		Data:       c.StartData,
	}
}

// GetData returns the value stored under key in the selected scope, or def when missing.
func (c *Context) GetData(key string, def any, scope DataScope) any {
	m := c.scope(scope)
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// SetData stores value under key in the selected scope.
func (c *Context) SetData(key string, value any, scope DataScope) {
	switch scope {
	case ScopeWidget:
		if c.WidgetData == nil {
			c.WidgetData = make(map[string]any)
		}
		c.WidgetData[key] = value
	default:
		if c.DialogData == nil {
			c.DialogData = make(map[string]any)
		}
		c.DialogData[key] = value
	}
}

// Clear drops both mappings. It is called once, when the owning intent is popped.
func (c *Context) Clear() {
	c.DialogData = make(map[string]any)
	c.WidgetData = make(map[string]any)
	c.cleared = true
}

// Cleared reports whether Clear was called on this context.
func (c *Context) Cleared() bool {
	return c.cleared
}

// Clone returns a copy safe for independent mutation.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	next := *c
	next.StartData = copyMap(c.StartData)
	next.DialogData = copyMap(c.DialogData)
	next.WidgetData = copyMap(c.WidgetData)
	next.AccessSettings = c.AccessSettings.Clone()
	if next.DialogData == nil {
		next.DialogData = make(map[string]any)
	}
	if next.WidgetData == nil {
		next.WidgetData = make(map[string]any)
	}
	return &next
}

func (c *Context) scope(scope DataScope) map[string]any {
	if scope == ScopeWidget {
		return c.WidgetData
	}
	return c.DialogData
}

// copyMap copies nested maps and slices so that clones never alias mutable data.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}
