package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DesignRequest is the body of POST /generate. Every field is optional text.
type DesignRequest struct {
	Name    string `json:"name,omitempty"`
	Symbols string `json:"symbols,omitempty"` // free-form list of visual elements
	Colors  string `json:"colors,omitempty"`
	Vibe    string `json:"vibe,omitempty"`
	Style   string `json:"style,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (r DesignRequest) Normalize() DesignRequest {
	return DesignRequest{
		Name:    strings.TrimSpace(r.Name),
		Symbols: strings.TrimSpace(r.Symbols),
		Colors:  strings.TrimSpace(r.Colors),
		Vibe:    strings.TrimSpace(r.Vibe),
		Style:   strings.TrimSpace(r.Style),
	}
}

// GenerateResponse is the success body of POST /generate
type GenerateResponse struct {
	ImageURL string `json:"imageUrl"`
}

// ErrorResponse is the failure body of every endpoint
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// GenerationEvent is published once per POST /generate when events are enabled.
// It carries no caller text, only which fields were present.
type GenerationEvent struct {
	ID            uuid.UUID       `json:"id"`
	RequestID     string          `json:"request_id,omitempty"`
	Outcome       string          `json:"outcome"` // succeeded or an error kind
	Stage         string          `json:"stage,omitempty"`
	FieldsPresent map[string]bool `json:"fields_present"`
	TextModel     string          `json:"text_model,omitempty"`
	ImageModel    string          `json:"image_model,omitempty"`
	TextMillis    int64           `json:"text_ms"`
	ImageMillis   int64           `json:"image_ms"`
	CreatedAt     time.Time       `json:"created_at"`
}
