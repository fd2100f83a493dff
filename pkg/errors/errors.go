package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError so callers (notably the control server)
// can map it to a response code without inspecting the message text.
type ErrorType string

const (
	ValidationError   ErrorType = "VALIDATION_ERROR"
	NotFoundError     ErrorType = "NOT_FOUND"
	ConfigParseError  ErrorType = "CONFIG_PARSE_ERROR"
	ConfigWriteError  ErrorType = "CONFIG_WRITE_ERROR"
	ProbeError        ErrorType = "PROBE_ERROR"
	ReviveSpawnError  ErrorType = "REVIVE_SPAWN_ERROR"
	DiscoveryError    ErrorType = "DISCOVERY_ERROR"
	InternalError     ErrorType = "INTERNAL_ERROR"
)

// AppError is the one typed error value used across the daemon: a kind tag,
// a human message, an optional wrapped cause, and a structured detail map.
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key/value to the error's detail map, for use at
// the call site after construction (mirrors the context-chaining idiom
// used elsewhere in this codebase).
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newAppError(t ErrorType, msg string, err error, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Details: details,
		Err:     err,
	}
}

func NewValidationError(msg string, details map[string]interface{}) *AppError {
	return newAppError(ValidationError, msg, nil, details)
}

func NewNotFoundError(msg string, details map[string]interface{}) *AppError {
	return newAppError(NotFoundError, msg, nil, details)
}

func NewConfigParseError(msg string, err error, details map[string]interface{}) *AppError {
	return newAppError(ConfigParseError, msg, err, details)
}

func NewConfigWriteError(msg string, err error, details map[string]interface{}) *AppError {
	return newAppError(ConfigWriteError, msg, err, details)
}

func NewProbeError(msg string, err error, details map[string]interface{}) *AppError {
	return newAppError(ProbeError, msg, err, details)
}

func NewReviveSpawnError(msg string, err error, details map[string]interface{}) *AppError {
	return newAppError(ReviveSpawnError, msg, err, details)
}

func NewDiscoveryError(msg string, err error, details map[string]interface{}) *AppError {
	return newAppError(DiscoveryError, msg, err, details)
}

func NewInternalError(msg string, err error, details map[string]interface{}) *AppError {
	return newAppError(InternalError, msg, err, details)
}

// IsType reports whether err is an *AppError of the given kind, unwrapping
// through any wrapper chain.
func IsType(err error, target ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == target
	}
	return false
}
