package stack_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/internal/stack"
	"github.com/dmitrymomot/shorty/internal/user"
)

func TestStackPages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	require.NoError(t, f.repo.Add(ctx, stack.LogData{Name: "load dashboard", Summary: "load dashboard: boom", Details: "0: *errors.errorString: boom"}))
	entries, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	id := entries[0].ID

	t.Run("visitors are sent to login", func(t *testing.T) {
		w := f.visitor(t).get("/stack/")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, user.LoginPath, w.Header().Get("Location"))
	})

	t.Run("plain users are refused", func(t *testing.T) {
		b := f.signIn(t, "alice", strongPassword)
		assert.Equal(t, http.StatusUnauthorized, b.get("/stack/").Code)
		assert.Equal(t, http.StatusUnauthorized, b.get(fmt.Sprintf("/stack/view/%d", id)).Code)
		assert.Equal(t, http.StatusUnauthorized, b.send(http.MethodDelete, "/stack/clear", nil).Code)
	})

	root := f.signIn(t, user.DefaultAdminName, user.DefaultAdminPassword)

	t.Run("list", func(t *testing.T) {
		w := root.get("/stack/")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "List Error Stack")
		assert.Contains(t, body, "load dashboard: boom")
		assert.Contains(t, body, "View Error Details")
		assert.Contains(t, body, fmt.Sprintf("/stack/view/%d", id))
		assert.Contains(t, body, "Are you sure you want to clear all error stacks older than 30 days?")
		assert.Contains(t, body, "Clear Older than 30 days")
	})

	t.Run("view", func(t *testing.T) {
		w := root.get(fmt.Sprintf("/stack/view/%d", id))
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Error Stack: load dashboard")
		assert.Contains(t, body, "Reported At")
		assert.Contains(t, body, `<pre class="error-stack">0: *errors.errorString: boom</pre>`)

		assert.Equal(t, http.StatusNotFound, root.get("/stack/view/999").Code)
	})

	t.Run("clear without token is refused", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, root.send(http.MethodDelete, "/stack/clear", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, root.send(http.MethodDelete, "/stack/clear", nil, "X-Csrf-Token", "forged").Code)

		entries, err := f.svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("clear keeps recent entries", func(t *testing.T) {
		token := root.pageToken("/stack/")
		w := root.send(http.MethodDelete, "/stack/clear", nil, "X-Csrf-Token", token)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/stack/", w.Header().Get("Location"))

		page := root.get("/stack/").Body.String()
		assert.Contains(t, page, "Successfully clear records older than 30 days")
		assert.Contains(t, page, "load dashboard")
	})

	t.Run("clear removes old entries", func(t *testing.T) {
		stack.SetClock(f.repo, nil, func() time.Time { return time.Now().Add(-45 * 24 * time.Hour) })
		require.NoError(t, f.repo.Add(ctx, stack.LogData{Name: "ancient"}))
		stack.SetClock(f.repo, nil, time.Now)

		w := root.get("/stack/clear", "HX-Request", "true")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("HX-Location"), "/stack/")

		entries, err := f.svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "load dashboard", entries[0].Name)
	})
}
