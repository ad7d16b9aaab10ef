package dialog_test

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// stubManager exposes one context and ignores navigation.
type stubManager struct {
	ctx *domain.Context
}

func (s *stubManager) Context() (*domain.Context, error) {
	if s.ctx == nil {
		return nil, domain.ErrNoContext
	}
	return s.ctx, nil
}

func (s *stubManager) Event() domain.Event { return nil }

func (s *stubManager) Start(context.Context, domain.StatesGroup, map[string]any, domain.LaunchMode) error {
	return nil
}

func (s *stubManager) SwitchTo(context.Context, domain.State) error { return nil }
func (s *stubManager) Next(context.Context) error                   { return nil }
func (s *stubManager) Back(context.Context) error                   { return nil }
func (s *stubManager) Done(context.Context, any) error              { return nil }
func (s *stubManager) Close(context.Context) error                  { return nil }
func (s *stubManager) Update(context.Context, map[string]any) error { return nil }
func (s *stubManager) Show(context.Context) error                   { return nil }
func (s *stubManager) SetShowMode(domain.ShowMode)                  {}
