package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the conversation subsystem.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION"
	CodeMetadataUnavailable = "METADATA_UNAVAILABLE"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidation, err)
}

func MetadataUnavailable(err error) *Error {
	return New(http.StatusConflict, CodeMetadataUnavailable, err)
}

func UpstreamUnavailable(err error) *Error {
	return New(http.StatusBadGateway, CodeUpstreamUnavailable, err)
}

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}
