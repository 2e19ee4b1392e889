package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/krestly/crest-server/internal/middleware"
	"github.com/krestly/crest-server/internal/models"
	"github.com/krestly/crest-server/internal/services"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps the POST /generate body.
const maxBodyBytes = 64 << 10

// crestService is the subset of services.CrestService used by the handlers.
type crestService interface {
	Generate(ctx context.Context, req models.DesignRequest) (*models.GenerateResponse, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	crests crestService
}

// NewHandler creates a new handler
func NewHandler(crests crestService) *Handler {
	return &Handler{crests: crests}
}

// Generate handles POST /generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req models.DesignRequest
	if err := decodeBody(r.Body, &req); err != nil {
		detail := "invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detail = "request body too large"
		} else if errors.Is(err, io.EOF) {
			detail = "request body is empty"
		}
		log.Debug().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("Rejected request body")
		writeJSONError(w, http.StatusBadRequest, string(services.KindValidation), detail)
		return
	}

	resp, err := h.crests.Generate(r.Context(), req)
	if err != nil {
		var e *services.Error
		if errors.As(err, &e) {
			writeJSONError(w, e.Kind.HTTPStatus(), string(e.Kind), e.Detail)
			return
		}
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("Unexpected generation error")
		writeJSONError(w, http.StatusInternalServerError, string(services.KindUnknown), "unexpected error while generating the image")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers unknown routes with the JSON error shape.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusNotFound, "not_found", "no such endpoint")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not supported on "+r.URL.Path)
}

// errTrailingData marks a body with anything but whitespace after the JSON object.
var errTrailingData = errors.New("unexpected data after JSON object")

// decodeBody decodes exactly one JSON value from body.
func decodeBody(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errTrailingData
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errTrailingData
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, models.ErrorResponse{Error: code, Detail: detail})
}
