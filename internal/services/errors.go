package services

import (
	"errors"
	"net/http"
)

// Kind is the caller-visible category of a failed generation.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindUpstreamText  Kind = "upstream_text_error"
	KindUpstreamImage Kind = "upstream_image_error"
	KindUnknown       Kind = "unknown_error"
)

// Stages of a generation, used in logs and events.
const (
	StageValidate = "validate"
	StageText     = "text"
	StageImage    = "image"
)

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	if k == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error is a generation failure. Detail is safe to show to callers; Err is the
// underlying cause and stays in server logs.
type Error struct {
	Kind   Kind
	Stage  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Detail + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, KindUnknown for errors not produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
