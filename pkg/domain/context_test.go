package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	s := StatesGroup("menu").State("main")
	assert.Equal(t, State("menu:main"), s)
	assert.Equal(t, "menu", s.Group())
	assert.Equal(t, "main", s.Name())
	assert.True(t, s.Valid())

	assert.False(t, State("nogroup").Valid())
	assert.Equal(t, "nogroup", State("nogroup").Name())
}

func TestContext_Data(t *testing.T) {
	c := NewContext("i1", "", "menu:main", map[string]any{"x": 1})

	assert.Equal(t, "def", c.GetData("k", "def", ScopeDialog))
	c.SetData("k", "v", ScopeDialog)
	c.SetData("k", true, ScopeWidget)

	assert.Equal(t, "v", c.GetData("k", nil, ScopeDialog))
	assert.Equal(t, true, c.GetData("k", nil, ScopeWidget))

	c.Clear()
	assert.True(t, c.Cleared())
	assert.Nil(t, c.GetData("k", nil, ScopeDialog))
	assert.Nil(t, c.GetData("k", nil, ScopeWidget))
	assert.Equal(t, 1, c.StartData["x"], "start data survives clear")
}

func TestContext_CloneIsDeep(t *testing.T) {
	c := NewContext("i1", "", "menu:main", nil)
	c.SetData("nested", map[string]any{"a": []any{1, 2}}, ScopeDialog)
	c.AccessSettings = &AccessSettings{UserIDs: []string{"u1"}}

	clone := c.Clone()
	clone.DialogData["nested"].(map[string]any)["a"] = "changed"
	clone.AccessSettings.UserIDs[0] = "u2"

	assert.Equal(t, []any{1, 2}, c.DialogData["nested"].(map[string]any)["a"])
	assert.Equal(t, "u1", c.AccessSettings.UserIDs[0])
}

func TestAccessSettings_Allows(t *testing.T) {
	var none *AccessSettings
	assert.True(t, none.Allows("anyone"))
	assert.True(t, (&AccessSettings{}).Allows("anyone"))

	a := &AccessSettings{UserIDs: []string{"u1", "u2"}}
	assert.True(t, a.Allows("u2"))
	assert.False(t, a.Allows("u3"))
}

func TestStackKey(t *testing.T) {
	chat := ChatKey{BotID: "b", ChatID: "c"}
	def := DefaultStackKey(chat, "u1")
	assert.True(t, def.Valid())
	assert.Equal(t, "b/c//u:u1", def.String())

	shared := StackKey{Chat: chat, StackID: "s1"}
	assert.True(t, shared.Valid())
	assert.Equal(t, "b/c//s:s1", shared.String())

	assert.False(t, StackKey{Chat: chat}.Valid())
}
