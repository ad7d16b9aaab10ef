// Package loader builds dialogs from YAML documents.
//
// Static structure (windows, texts, keyboards, conditions) lives in the document;
// behaviour is either one of the built-in actions or a Go function registered on
// the Loader under the name the document refers to.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/widget"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Loader resolves the function names used by documents.
type Loader struct {
	getters    map[string]dialog.Getter
	messages   map[string]dialog.MessageHandler
	clicks     map[string]widget.OnClick
	itemClicks map[string]widget.OnItemClick
	changes    map[string]widget.OnStateChanged
	starts     map[string]dialog.StartHook
	closes     map[string]dialog.CloseHook
	results    map[string]dialog.ResultHook
	// external groups may be started by documents without being defined in them.
	external map[string]bool
}

// Option registers functions on the Loader.
type Option func(*Loader)

// WithGetter registers a getter usable as `getter: name`.
func WithGetter(name string, g dialog.Getter) Option {
	return func(l *Loader) { l.getters[name] = g }
}

// WithMessageHandler registers a handler usable as `on_message: name`.
func WithMessageHandler(name string, h dialog.MessageHandler) Option {
	return func(l *Loader) { l.messages[name] = h }
}

// WithOnClick registers a button handler usable as `on_click: name`.
func WithOnClick(name string, h widget.OnClick) Option {
	return func(l *Loader) { l.clicks[name] = h }
}

// WithOnItemClick registers a select handler usable as `on_click: name`.
func WithOnItemClick(name string, h widget.OnItemClick) Option {
	return func(l *Loader) { l.itemClicks[name] = h }
}

// WithOnStateChanged registers a checkbox or radio handler usable as `on_change: name`.
func WithOnStateChanged(name string, h widget.OnStateChanged) Option {
	return func(l *Loader) { l.changes[name] = h }
}

// WithStartHook registers a dialog hook usable as `on_start: name`.
func WithStartHook(name string, h dialog.StartHook) Option {
	return func(l *Loader) { l.starts[name] = h }
}

// WithCloseHook registers a dialog hook usable as `on_close: name`.
func WithCloseHook(name string, h dialog.CloseHook) Option {
	return func(l *Loader) { l.closes[name] = h }
}

// WithResultHook registers a dialog hook usable as `on_process_result: name`.
func WithResultHook(name string, h dialog.ResultHook) Option {
	return func(l *Loader) { l.results[name] = h }
}

// WithExternalGroups allows documents to start dialogs defined in Go.
func WithExternalGroups(groups ...string) Option {
	return func(l *Loader) {
		for _, g := range groups {
			l.external[g] = true
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		getters:    make(map[string]dialog.Getter),
		messages:   make(map[string]dialog.MessageHandler),
		clicks:     make(map[string]widget.OnClick),
		itemClicks: make(map[string]widget.OnItemClick),
		changes:    make(map[string]widget.OnStateChanged),
		starts:     make(map[string]dialog.StartHook),
		closes:     make(map[string]dialog.CloseHook),
		results:    make(map[string]dialog.ResultHook),
		external:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parse decodes a document without building it.
func Parse(r io.Reader) (*File, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	var file File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &file,
		ErrorUnused: true,
		DecodeHook:  textHook,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode dialogs: %w", err)
	}
	return &file, nil
}

// textHook lets a plain string stand for a TextSpec.
func textHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(TextSpec{}) || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]any{"value": data}, nil
}

// Load parses and builds every dialog of the document.
// All problems found are reported together.
func (l *Loader) Load(r io.Reader) ([]*dialog.Dialog, error) {
	file, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return l.Build(file)
}

// LoadBytes is Load over a byte slice.
func (l *Loader) LoadBytes(b []byte) ([]*dialog.Dialog, error) {
	return l.Load(bytes.NewReader(b))
}

// LoadFile is Load over the file at path.
func (l *Loader) LoadFile(path string) ([]*dialog.Dialog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dialogs, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dialogs, nil
}

// LoadRegistry loads the file at path into a new registry.
func (l *Loader) LoadRegistry(path string) (*dialog.Registry, error) {
	dialogs, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return dialog.NewRegistry(dialogs...)
}
