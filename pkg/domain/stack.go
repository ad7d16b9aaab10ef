package domain

import (
	"fmt"
	"slices"
)

// MaxStackDepth bounds the number of intents a single stack can hold.
const MaxStackDepth = 100

// DefaultStackID is the id of the per-user primary stack.
const DefaultStackID = ""

// Stack is the ordered intent history of one conversation. The last element is active.
type Stack struct {
	ID      string   `json:"id"`
	Intents []string `json:"intents"`

	// LastMessage remembers the last rendered screen to decide edit versus resend.
	LastMessage            *OldMessage     `json:"last_message,omitempty"`
	LastIncomeMediaGroupID string          `json:"last_income_media_group_id,omitempty"`
	AccessSettings         *AccessSettings `json:"access_settings,omitempty"`

	// ExclusiveIntent is set while an intent started in exclusive mode is on top.
	ExclusiveIntent string `json:"exclusive_intent,omitempty"`

	idgen IDGenerator
}

// NewStack creates an empty stack.
func NewStack(id string) *Stack {
	return &Stack{
		ID:      id,
		Intents: []string{},
	}
}

// SetIDGenerator overrides the generator used by Push.
func (s *Stack) SetIDGenerator(gen IDGenerator) {
	s.idgen = gen
}

// Push appends a fresh intent and returns its newly created context.
// It fails with ErrStackOverflow when the stack is already full.
func (s *Stack) Push(state State, data map[string]any) (*Context, error) {
	if len(s.Intents) >= MaxStackDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrStackOverflow, len(s.Intents))
	}

	gen := s.idgen
	if gen == nil {
		gen = DefaultIDGenerator
	}
	id := gen.NewID()
	if s.Contains(id) {
		return nil, fmt.Errorf("intent id collision on stack %q: %s", s.ID, id)
	}

	s.Intents = append(s.Intents, id)
	return NewContext(id, s.ID, state, data), nil
}

// Pop removes and returns the active intent id.
func (s *Stack) Pop() (string, error) {
	if len(s.Intents) == 0 {
		return "", ErrEmptyStack
	}
	last := len(s.Intents) - 1
	id := s.Intents[last]
	s.Intents = s.Intents[:last]
	if s.ExclusiveIntent == id {
		s.ExclusiveIntent = ""
	}
	return id, nil
}

// Current returns the active intent id without mutating the stack.
func (s *Stack) Current() (string, bool) {
	if len(s.Intents) == 0 {
		return "", false
	}
	return s.Intents[len(s.Intents)-1], true
}

// Empty reports whether no intent is on the stack.
func (s *Stack) Empty() bool {
	return len(s.Intents) == 0
}

// Default reports whether this is the conversation's primary stack.
func (s *Stack) Default() bool {
	return s.ID == DefaultStackID
}

// Depth returns the number of intents on the stack.
func (s *Stack) Depth() int {
	return len(s.Intents)
}

// Contains reports whether the intent id is anywhere on the stack.
func (s *Stack) Contains(intentID string) bool {
	return slices.Contains(s.Intents, intentID)
}

// Clone returns a deep copy of the stack, keeping its id generator.
func (s *Stack) Clone() *Stack {
	if s == nil {
		return nil
	}
	next := *s
	next.Intents = append([]string{}, s.Intents...)
	next.LastMessage = s.LastMessage.Clone()
	next.AccessSettings = s.AccessSettings.Clone()
	return &next
}
