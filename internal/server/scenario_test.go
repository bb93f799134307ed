// ABOUTME: End-to-end scenario over a real HTTP listener and SQLite database
// ABOUTME: Walks register, failed and successful login, create, and partial update

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/taskd/internal/store"
)

type scenarioClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *scenarioClient) do(method, path string, body any, out any) int {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestScenario_RegisterLoginCreateComplete(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "taskd.db"))
	require.NoError(t, err)

	cfg := testConfig()
	srv, err := NewWithStore(cfg, st, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := &scenarioClient{t: t, base: ts.URL}

	// Register
	var user userResponse
	status := c.do(http.MethodPost, "/auth/register", map[string]string{
		"email": "a@x.com", "name": "A", "password": "secret1",
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "a@x.com", user.Email)

	// Wrong password
	var failure map[string]string
	status = c.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong",
	}, &failure)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", failure["error"])

	// Correct password
	var tok tokenResponse
	status = c.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	}, &tok)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, tok.AccessToken)
	c.token = tok.AccessToken

	// The token identifies the registered user
	var me userResponse
	status = c.do(http.MethodGet, "/auth/me", nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, user.ID, me.ID)

	// Create
	var task taskResponse
	status = c.do(http.MethodPost, "/tasks", map[string]string{
		"title": "T1", "description": "D1",
	}, &task)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", task.Status)
	assert.Equal(t, "T1", task.Title)

	// Complete
	var updated taskResponse
	status = c.do(http.MethodPatch, "/tasks/"+task.ID, map[string]string{
		"status": "completed",
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "T1", updated.Title)
	assert.Equal(t, "D1", updated.Description)

	// Listed with the new status
	var page pageResponse
	status = c.do(http.MethodGet, "/tasks", nil, &page)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "completed", page.Data[0].Status)
}
