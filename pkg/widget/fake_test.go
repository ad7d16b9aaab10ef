package widget_test

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// fakeManager records navigation calls against a single context.
type fakeManager struct {
	ctx      *domain.Context
	calls    []string
	showMode domain.ShowMode
}

func newFakeManager() *fakeManager {
	return &fakeManager{ctx: domain.NewContext("intent", "", "test:main", nil)}
}

func (f *fakeManager) Context() (*domain.Context, error) {
	if f.ctx == nil {
		return nil, domain.ErrNoContext
	}
	return f.ctx, nil
}

func (f *fakeManager) Event() domain.Event { return nil }

func (f *fakeManager) Start(_ context.Context, group domain.StatesGroup, _ map[string]any, mode domain.LaunchMode) error {
	f.calls = append(f.calls, "start:"+string(group)+":"+string(mode))
	return nil
}

func (f *fakeManager) SwitchTo(_ context.Context, state domain.State) error {
	f.calls = append(f.calls, "switch:"+string(state))
	return nil
}

func (f *fakeManager) Next(context.Context) error {
	f.calls = append(f.calls, "next")
	return nil
}

func (f *fakeManager) Back(context.Context) error {
	f.calls = append(f.calls, "back")
	return nil
}

func (f *fakeManager) Done(_ context.Context, result any) error {
	f.calls = append(f.calls, "done")
	return nil
}

func (f *fakeManager) Close(context.Context) error {
	f.calls = append(f.calls, "close")
	return nil
}

func (f *fakeManager) Update(_ context.Context, data map[string]any) error {
	f.calls = append(f.calls, "update")
	return nil
}

func (f *fakeManager) Show(context.Context) error {
	f.calls = append(f.calls, "show")
	return nil
}

func (f *fakeManager) SetShowMode(mode domain.ShowMode) {
	f.showMode = mode
}
