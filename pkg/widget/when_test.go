package widget_test

import (
	"testing"

	"github.com/aretw0/chatdialog/pkg/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, 0, 0.0, "", []string{}, map[string]any{}, uint8(0)}
	for _, v := range falsy {
		assert.False(t, widget.Truthy(v), "%#v", v)
	}
	truthy := []any{true, 1, -1, 0.5, "x", []int{1}, map[string]int{"a": 1}, struct{}{}}
	for _, v := range truthy {
		assert.True(t, widget.Truthy(v), "%#v", v)
	}
}

func TestConditions(t *testing.T) {
	m := newFakeManager()
	data := widget.Data{"admin": true, "count": 5, "name": ""}

	cases := []struct {
		name string
		pred widget.Predicate
		want bool
	}{
		{"field true", widget.WhenField("admin"), true},
		{"field empty", widget.WhenField("name"), false},
		{"field missing", widget.WhenField("nope"), false},
		{"expr", widget.WhenExpr("count > 3 && admin"), true},
		{"expr false", widget.WhenExpr("count > 10"), false},
		{"not", widget.Not(widget.WhenField("admin")), false},
		{"all", widget.All(widget.WhenField("admin"), widget.WhenField("count")), true},
		{"any", widget.Any(widget.WhenField("name"), widget.WhenField("count")), true},
		{"func", widget.WhenFunc(func(d widget.Data, _ widget.Widget, _ widget.Manager) (bool, error) {
			return d["count"] == 5, nil
		}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := tc.pred(data, nil, m)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestExpr_Errors(t *testing.T) {
	_, err := widget.Expr("count >")
	assert.Error(t, err)
	assert.Panics(t, func() { widget.WhenExpr("((") })

	p, err := widget.Expr(`name + 1`)
	require.NoError(t, err)
	_, err = p(widget.Data{"name": []int{1}}, nil, newFakeManager())
	assert.Error(t, err, "runtime errors fail fast")
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, widget.ValidateID("btn_1"))
	assert.Error(t, widget.ValidateID("bad id"))
	assert.Error(t, widget.ValidateID("a:b"))
	assert.Error(t, widget.ValidateID(""))
	assert.Panics(t, func() { widget.NewButton(widget.Const("x"), "no-dash", nil) })
}
