package id

import (
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var crockford = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

func TestNewULID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 1000 {
		v := NewULID()
		require.Regexp(t, crockford, v)
		_, dup := seen[v]
		require.False(t, dup)
		seen[v] = struct{}{}
	}
}

func TestULIDSortable(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{
		ulidAt(base.Add(2 * time.Millisecond)),
		ulidAt(base),
		ulidAt(base.Add(time.Hour)),
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	assert.Equal(t, []string{ids[1], ids[0], ids[2]}, sorted)
	assert.Equal(t, ulidAt(base)[:10], ulidAt(base)[:10])
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(32)
	require.NoError(t, err)
	assert.Len(t, tok, 43)
	assert.NotContains(t, tok, "=")
}
