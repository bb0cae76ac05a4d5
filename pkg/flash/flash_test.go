package flash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/flash"
)

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	raw, err := flash.Encode(flash.Error("Invalid username or password."))
	require.NoError(t, err)

	msg, err := flash.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, flash.KindError, msg.Kind)
	assert.Equal(t, "Invalid username or password.", msg.Message)
	assert.Equal(t, "flash-message flash-message-error", msg.Class())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := flash.Decode("not json")
	require.ErrorIs(t, err, flash.ErrDecode)

	_, err = flash.Decode(`{"message":"no kind"}`)
	require.ErrorIs(t, err, flash.ErrDecode)
}
