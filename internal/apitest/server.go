// Package apitest provides an endpoint-shaped fake of the storefront backend
// for package tests. Handlers are registered per route on a chi router so
// tests can exercise path parameters the same way the real backend does.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	*httptest.Server
	router *chi.Mux
}

func New() *Server {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "route not found",
		})
	})
	return &Server{
		Server: httptest.NewServer(r),
		router: r,
	}
}

// Handle registers a handler for method+pattern. Patterns use chi syntax,
// e.g. "/cart/remove/{id}".
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.router.Method(method, pattern, h)
}

// Param reads a chi route parameter inside a registered handler.
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes the backend's standard error envelope.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{"success": false, "message": msg})
}
