// ABOUTME: HTTP handlers for the auth and task endpoints
// ABOUTME: Decode requests, call the services with the caller's identity, and encode results

package server

import (
	"net/http"
	"strconv"

	"github.com/2389/taskd/internal/auth"
	"github.com/2389/taskd/internal/tasks"
)

// bulkDeleteRequest is the JSON request body for POST /tasks/delete.
type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// bulkDeleteResponse is the JSON response for POST /tasks/delete.
type bulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// messageResponse is a JSON acknowledgement with no resource body.
type messageResponse struct {
	Message string `json:"message"`
}

// handleRegister handles POST /auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !decodeJSON(w, r, &in, true) {
		return
	}

	user, err := s.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleLogin handles POST /auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !decodeJSON(w, r, &in, true) {
		return
	}

	token, err := s.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// handleMe handles GET /auth/me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	user, err := s.auth.Me(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Idempotent create headers.
const (
	idempotencyKeyHeader     = "Idempotency-Key"
	idempotentReplayedHeader = "Idempotent-Replayed"
)

// handleCreateTask handles POST /tasks. A repeated Idempotency-Key returns the
// task created by the first request.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	var in tasks.CreateInput
	if !decodeJSON(w, r, &in, true) {
		return
	}

	task, replayed, err := s.tasks.CreateIdempotent(r.Context(), id.UserID, r.Header.Get(idempotencyKeyHeader), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if replayed {
		w.Header().Set(idempotentReplayedHeader, "true")
	}
	writeJSON(w, http.StatusCreated, task)
}

// handleListTasks handles GET /tasks?page=&limit=&status=&search=.
// Unparseable page and limit values fall back to the defaults.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())
	q := r.URL.Query()

	params := tasks.ListParams{
		Page:   queryInt(q.Get("page")),
		Limit:  queryInt(q.Get("limit")),
		Status: q.Get("status"),
		Search: q.Get("search"),
	}

	page, err := s.tasks.List(r.Context(), id.UserID, params)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleGetTask handles GET /tasks/{id}.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	task, err := s.tasks.Get(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleUpdateTask handles PATCH /tasks/{id}. Unknown fields such as id or
// owner_id are ignored rather than rejected.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	var in tasks.UpdateInput
	if !decodeJSON(w, r, &in, false) {
		return
	}

	task, err := s.tasks.Update(r.Context(), id.UserID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleDeleteTask handles DELETE /tasks/{id}.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	if err := s.tasks.Delete(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "task deleted"})
}

// handleBulkDelete handles POST /tasks/delete.
func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	id := auth.MustFromContext(r.Context())

	var req bulkDeleteRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	n, err := s.tasks.DeleteMany(r.Context(), id.UserID, req.IDs)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkDeleteResponse{Deleted: n})
}

// queryInt parses a positive integer query value, returning 0 when absent or invalid.
func queryInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
