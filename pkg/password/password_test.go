package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/password"
)

// cheap parameters keep the suite fast
var fast = password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashVerify(t *testing.T) {
	t.Parallel()

	hash, err := password.Hash("banana")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	state, err := password.Verify(hash, "banana")
	require.NoError(t, err)
	assert.Equal(t, password.StateValid, state)

	state, err = password.Verify(hash, "apple")
	require.NoError(t, err)
	assert.Equal(t, password.StateInvalid, state)
	assert.False(t, state.IsValid())
}

func TestVerifyOutdatedParams(t *testing.T) {
	t.Parallel()

	hash, err := password.HashWith("banana", fast)
	require.NoError(t, err)

	state, err := password.Verify(hash, "banana")
	require.NoError(t, err)
	assert.Equal(t, password.StateValidRehashed, state)
	assert.True(t, state.IsValid())
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	_, err := password.Verify("plain-text", "x")
	require.ErrorIs(t, err, password.ErrMalformedHash)

	_, err = password.Verify("$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5", "x")
	require.ErrorIs(t, err, password.ErrUnsupported)

	_, err = password.Verify("$argon2id$v=19$m=1,t=1,p=1$!!$a2V5", "x")
	require.ErrorIs(t, err, password.ErrMalformedHash)
}

func TestEntropy(t *testing.T) {
	t.Parallel()

	assert.Zero(t, password.Entropy(""))
	assert.Less(t, password.Entropy("banana"), 60.0)
	assert.Less(t, password.Entropy("password123"), 60.0)
	assert.GreaterOrEqual(t, password.Entropy("Correct-Horse-Battery-9"), 60.0)
	assert.InDelta(t, 6*4.7004, password.Entropy("banana"), 0.01)
}
