package loader

// File is the root of a dialogs document.
type File struct {
	Dialogs []DialogSpec `json:"dialogs" mapstructure:"dialogs"`
}

// DialogSpec describes one dialog. Function fields name Go functions registered on the Loader.
type DialogSpec struct {
	Group      string         `json:"group" mapstructure:"group"`
	LaunchMode string         `json:"launch_mode" mapstructure:"launch_mode"`
	Data       map[string]any `json:"data" mapstructure:"data"`
	Getter     string         `json:"getter" mapstructure:"getter"`
	OnStart    string         `json:"on_start" mapstructure:"on_start"`
	OnClose    string         `json:"on_close" mapstructure:"on_close"`
	OnResult   string         `json:"on_process_result" mapstructure:"on_process_result"`
	// ResultKey stores the result of a child dialog in the dialog data under this key.
	ResultKey string       `json:"result_key" mapstructure:"result_key"`
	Windows   []WindowSpec `json:"windows" mapstructure:"windows"`
}

// WindowSpec describes one window. The state is the dialog group joined with Name.
type WindowSpec struct {
	Name              string       `json:"name" mapstructure:"name"`
	Text              TextSpec     `json:"text" mapstructure:"text"`
	Media             *MediaSpec   `json:"media" mapstructure:"media"`
	Keyboard          []WidgetSpec `json:"keyboard" mapstructure:"keyboard"`
	Width             int          `json:"width" mapstructure:"width"`
	Getter            string       `json:"getter" mapstructure:"getter"`
	OnMessage         string       `json:"on_message" mapstructure:"on_message"`
	Input             *InputSpec   `json:"input" mapstructure:"input"`
	ParseMode         string       `json:"parse_mode" mapstructure:"parse_mode"`
	DisableWebPreview bool         `json:"disable_web_preview" mapstructure:"disable_web_preview"`
}

// TextSpec is either a plain string or an object. Values containing "{{" are templates.
type TextSpec struct {
	Value string `json:"value" mapstructure:"value"`
	When  string `json:"when" mapstructure:"when"`
	// Items renders Value once per element of data[Items], joined by Sep.
	Items string `json:"items" mapstructure:"items"`
	Sep   string `json:"sep" mapstructure:"sep"`
}

// MediaSpec attaches a static URL or file, or the media found in data[Key].
type MediaSpec struct {
	Type string `json:"type" mapstructure:"type"`
	URL  string `json:"url" mapstructure:"url"`
	Path string `json:"path" mapstructure:"path"`
	Key  string `json:"key" mapstructure:"key"`
	When string `json:"when" mapstructure:"when"`
}

// InputSpec stores the text of user messages in the dialog data, then runs Then.
type InputSpec struct {
	Key  string `json:"key" mapstructure:"key"`
	Then string `json:"then" mapstructure:"then"`
}

// WidgetSpec describes one keyboard widget. Which fields apply depends on Type.
type WidgetSpec struct {
	Type string   `json:"type" mapstructure:"type"`
	ID   string   `json:"id" mapstructure:"id"`
	Text TextSpec `json:"text" mapstructure:"text"`
	When string   `json:"when" mapstructure:"when"`

	// switch, start
	State string         `json:"state" mapstructure:"state"`
	Group string         `json:"group" mapstructure:"group"`
	Mode  string         `json:"mode" mapstructure:"mode"`
	Data  map[string]any `json:"data" mapstructure:"data"`

	// url, done
	URL    string `json:"url" mapstructure:"url"`
	Result any    `json:"result" mapstructure:"result"`

	// checkbox, radio, select
	Checked   TextSpec `json:"checked" mapstructure:"checked"`
	Unchecked TextSpec `json:"unchecked" mapstructure:"unchecked"`
	Default   bool     `json:"default" mapstructure:"default"`
	Items     string   `json:"items" mapstructure:"items"`
	Store     string   `json:"store" mapstructure:"store"`
	Then      string   `json:"then" mapstructure:"then"`

	OnClick  string `json:"on_click" mapstructure:"on_click"`
	OnChange string `json:"on_change" mapstructure:"on_change"`

	// row, column, group
	Children []WidgetSpec `json:"children" mapstructure:"children"`
	Width    int          `json:"width" mapstructure:"width"`
}
