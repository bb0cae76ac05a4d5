package binder_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/pkg/binder"
)

type userForm struct {
	Username string   `form:"username"`
	Role     string   `form:"role"`
	Age      int      `form:"age"`
	Active   bool     `form:"active"`
	Tags     []string `form:"tag"`
}

func TestForm(t *testing.T) {
	t.Parallel()

	body := url.Values{
		"username": {"admin"},
		"role":     {"root"},
		"age":      {"42"},
		"active":   {"1"},
		"tag":      {"a", "b"},
		"unknown":  {"x"},
	}
	r := httptest.NewRequest(http.MethodPost, "/user/add-user?role=user", strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var f userForm
	require.NoError(t, binder.Form()(r, &f))
	assert.Equal(t, userForm{Username: "admin", Role: "root", Age: 42, Active: true, Tags: []string{"a", "b"}}, f)
}

func TestFormGetUsesQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?username=guest", nil)
	var f userForm
	require.NoError(t, binder.Form()(r, &f))
	assert.Equal(t, "guest", f.Username)
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?age=notanumber", nil)
	var f userForm
	require.ErrorIs(t, binder.Query()(r, &f), binder.ErrDecode)
}
