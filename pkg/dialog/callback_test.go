package dialog_test

import (
	"testing"

	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/stretchr/testify/assert"
)

func TestCallbackCodec(t *testing.T) {
	data := dialog.EncodeCallback("abc", "fruit:2")
	assert.Equal(t, "abc\x1dfruit:2", data)

	intent, payload, ok := dialog.DecodeCallback(data)
	assert.True(t, ok)
	assert.Equal(t, "abc", intent)
	assert.Equal(t, "fruit:2", payload)

	_, payload, ok = dialog.DecodeCallback("plain")
	assert.False(t, ok)
	assert.Equal(t, "plain", payload)

	_, _, ok = dialog.DecodeCallback("\x1dorphan")
	assert.False(t, ok)
}
