package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/session"
)

func TestSessionFlags(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	assert.True(t, sess.IsNew())
	assert.True(t, sess.IsDirty())
	assert.False(t, sess.IsAuthenticated())
	assert.False(t, sess.IsExpired())

	sess.ClearNew()
	sess.ClearDirty()
	assert.False(t, sess.IsNew())
	assert.False(t, sess.IsDirty())

	sess.DeleteValue("missing")
	assert.False(t, sess.IsDirty(), "deleting an absent key keeps the session clean")

	sess.SetValue("csrf_token", "abc")
	assert.True(t, sess.IsDirty())

	uid := "42"
	sess.UserID = &uid
	assert.True(t, sess.IsAuthenticated())

	sess.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, sess.IsExpired())
}

func TestTypedValues(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("flash", "hello")

	v, err := session.Value[string](sess, "flash")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = session.Value[int](sess, "flash")
	require.Error(t, err)

	_, err = session.Value[string](nil, "flash")
	require.ErrorIs(t, err, session.ErrNotFound)

	assert.Equal(t, 7, session.ValueOr(sess, "missing", 7))
}
