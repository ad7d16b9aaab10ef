package widget_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttons(n int) []widget.Keyboard {
	out := make([]widget.Keyboard, n)
	for i := range out {
		out[i] = widget.NewButton(widget.Const(fmt.Sprint(i)), fmt.Sprintf("b%d", i), nil)
	}
	return out
}

func rowSizes(kb domain.Keyboard) []int {
	sizes := make([]int, len(kb))
	for i, row := range kb {
		sizes[i] = len(row)
	}
	return sizes
}

func TestGroup_Layouts(t *testing.T) {
	ctx := context.Background()
	m := newFakeManager()

	kb, err := widget.Group(buttons(5)...).Width(2).RenderKeyboard(ctx, nil, m)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, rowSizes(kb))

	kb, err = widget.Row(buttons(3)...).RenderKeyboard(ctx, nil, m)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, rowSizes(kb))

	kb, err = widget.Column(buttons(3)...).RenderKeyboard(ctx, nil, m)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, rowSizes(kb))

	nested := widget.Group(widget.Row(buttons(2)...), widget.Row(buttons(3)...))
	kb, err = nested.RenderKeyboard(ctx, nil, m)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, rowSizes(kb), "plain groups keep child rows")
}

func TestGroup_SkipsInvisible(t *testing.T) {
	ctx := context.Background()
	g := widget.Row(
		widget.NewButton(widget.Const("A"), "a", nil),
		widget.NewButton(widget.Const("B"), "b", nil).When(widget.WhenField("show_b")),
	)

	kb, err := g.RenderKeyboard(ctx, widget.Data{}, newFakeManager())
	require.NoError(t, err)
	require.Len(t, kb, 1)
	assert.Len(t, kb[0], 1)
	assert.Equal(t, "a", kb[0][0].CallbackData)
}

func TestGroup_DispatchStopsAtFirstConsumer(t *testing.T) {
	ctx := context.Background()
	var clicked []string
	handler := func(name string) widget.OnClick {
		return func(context.Context, *domain.CallbackEvent, *widget.Button, widget.Manager) error {
			clicked = append(clicked, name)
			return nil
		}
	}
	g := widget.Group(
		widget.NewButton(widget.Const("1"), "same", handler("first")),
		widget.NewButton(widget.Const("2"), "same", handler("second")),
	)

	ok, err := g.ProcessCallback(ctx, &domain.CallbackEvent{}, "same", newFakeManager())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"first"}, clicked)

	ok, err = g.ProcessCallback(ctx, &domain.CallbackEvent{}, "other", newFakeManager())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNavigationButtons(t *testing.T) {
	ctx := context.Background()
	m := newFakeManager()
	var order []string
	user := func(context.Context, *domain.CallbackEvent, *widget.Button, widget.Manager) error {
		order = append(order, "user")
		return nil
	}

	kb := widget.Group(
		widget.Next(widget.Const("Next"), "next", user),
		widget.Back(widget.Const("Back"), "back", nil),
		widget.Cancel(widget.Const("Cancel"), "cancel", nil),
		widget.SwitchTo(widget.Const("Go"), "go", "test:other", nil),
		widget.Start(widget.Const("Sub"), "sub", "sub", nil, domain.LaunchRoot, nil),
	)
	for _, payload := range []string{"next", "back", "cancel", "go", "sub"} {
		ok, err := kb.ProcessCallback(ctx, &domain.CallbackEvent{}, payload, m)
		require.NoError(t, err)
		require.True(t, ok, payload)
	}

	assert.Equal(t, []string{"next", "back", "done", "switch:test:other", "start:sub:root"}, m.calls)
	assert.Equal(t, []string{"user"}, order, "user handler runs before the preset action")
}

func TestURLButton(t *testing.T) {
	ctx := context.Background()
	b := widget.URL(widget.Const("Docs"), widget.Format("https://example.com/{{.page}}"))

	kb, err := b.RenderKeyboard(ctx, widget.Data{"page": "intro"}, newFakeManager())
	require.NoError(t, err)
	assert.Equal(t, domain.Keyboard{{{Text: "Docs", URL: "https://example.com/intro"}}}, kb)

	ok, err := b.ProcessCallback(ctx, &domain.CallbackEvent{}, "anything", newFakeManager())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckbox_Toggle(t *testing.T) {
	ctx := context.Background()
	m := newFakeManager()
	changes := 0
	cb := widget.Checkbox(widget.Const("[x] Notify"), widget.Const("[ ] Notify"), "notify", false,
		func(context.Context, string, widget.Manager) error {
			changes++
			return nil
		})

	label := func() string {
		kb, err := cb.RenderKeyboard(ctx, nil, m)
		require.NoError(t, err)
		return kb[0][0].Text
	}

	assert.Equal(t, "[ ] Notify", label())

	ok, err := cb.ProcessCallback(ctx, &domain.CallbackEvent{}, "notify", m)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, true, m.ctx.WidgetData["notify"])
	assert.Equal(t, "[x] Notify", label())

	_, err = cb.ProcessCallback(ctx, &domain.CallbackEvent{}, "notify", m)
	require.NoError(t, err)
	assert.Equal(t, false, m.ctx.WidgetData["notify"])
	assert.Equal(t, "[ ] Notify", label())
	assert.Equal(t, 2, changes)
}

func TestCheckbox_NoContext(t *testing.T) {
	m := newFakeManager()
	m.ctx = nil
	cb := widget.Checkbox(widget.Const("on"), widget.Const("off"), "flag", false, nil)

	_, err := cb.ProcessCallback(context.Background(), &domain.CallbackEvent{}, "flag", m)
	assert.ErrorIs(t, err, domain.ErrNoContext)
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	m := newFakeManager()
	var picked string
	sel := widget.Select(widget.Format("{{.item.name}}"), "fruit", "fruits", nil,
		func(_ context.Context, _ *domain.CallbackEvent, _ *widget.SelectKeyboard, _ widget.Manager, itemID string) error {
			picked = itemID
			return nil
		})
	data := widget.Data{"fruits": []map[string]any{{"id": 1, "name": "Apple"}, {"id": 2, "name": "Pear"}}}

	kb, err := sel.RenderKeyboard(ctx, data, m)
	require.NoError(t, err)
	assert.Equal(t, domain.Keyboard{{
		{Text: "Apple", CallbackData: "fruit:1"},
		{Text: "Pear", CallbackData: "fruit:2"},
	}}, kb)

	ok, err := sel.ProcessCallback(ctx, &domain.CallbackEvent{}, "fruit:2", m)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", picked)

	ok, err = sel.ProcessCallback(ctx, &domain.CallbackEvent{}, "fruit", m)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRadio(t *testing.T) {
	ctx := context.Background()
	m := newFakeManager()
	radio := widget.Radio(widget.Format("(*) {{.item}}"), widget.Format("( ) {{.item}}"), "size", "sizes", nil, nil)
	data := widget.Data{"sizes": []string{"S", "M"}}

	ok, err := radio.ProcessCallback(ctx, &domain.CallbackEvent{}, "size:M", m)
	require.NoError(t, err)
	require.True(t, ok)

	kb, err := radio.RenderKeyboard(ctx, data, m)
	require.NoError(t, err)
	assert.Equal(t, "( ) S", kb[0][0].Text)
	assert.Equal(t, "(*) M", kb[0][1].Text)

	checked, err := radio.Checked(m)
	require.NoError(t, err)
	assert.Equal(t, "M", checked)
}

func TestMedia(t *testing.T) {
	ctx := context.Background()
	m := newFakeManager()

	media, err := widget.StaticMedia(domain.MediaPhoto, widget.Format("https://img/{{.id}}.png")).RenderMedia(ctx, widget.Data{"id": 7}, m)
	require.NoError(t, err)
	assert.Equal(t, "https://img/7.png", media.URL)

	media, err = widget.DynamicMedia("photo").RenderMedia(ctx, widget.Data{"photo": domain.Media{Type: domain.MediaPhoto, FileID: "f"}}, m)
	require.NoError(t, err)
	assert.Equal(t, "f", media.FileID)

	media, err = widget.DynamicMedia("photo").RenderMedia(ctx, widget.Data{}, m)
	require.NoError(t, err)
	assert.Nil(t, media)
}
