package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krestly/crest-server/internal/middleware"
)

// NewRouter wires the endpoints. CORS wraps the router so preflight requests
// are answered before route matching.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	r.HandleFunc("/generate", h.Generate).Methods("POST")
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	var handler http.Handler = r
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = middleware.Recover(handler)
	handler = middleware.AccessLog(handler)
	handler = middleware.RequestID(handler)
	return handler
}
