// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured rejection from the backend. Callers extract it
// with errors.As:
//
//	var backendErr *backend.Error
//	if errors.As(err, &backendErr) {
//	    if backendErr.Code == backend.CodeNotFound { ... }
//	}
//
// errors.Is against the package sentinels compares codes only, so
// errors.Is(err, backend.ErrNotFound) matches any not-found error
// regardless of message.
type Error struct {
	// Code classifies the failure.
	Code string `json:"errcode"`
	// Message is the human-readable description.
	Message string `json:"error"`
	// StatusCode is the HTTP status the code maps to.
	StatusCode int `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s: %s", e.Code, e.Message)
}

// Is matches another *Error with the same Code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// Error codes.
const (
	CodeNotFound     = "not_found"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeInvalidParam = "invalid_param"
	CodeConflict     = "conflict"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal"
)

// Sentinels for errors.Is.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found", StatusCode: http.StatusNotFound}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden", StatusCode: http.StatusForbidden}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized", StatusCode: http.StatusUnauthorized}
	ErrInvalidParam = &Error{Code: CodeInvalidParam, Message: "invalid parameter", StatusCode: http.StatusBadRequest}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict", StatusCode: http.StatusConflict}
	ErrRateLimited  = &Error{Code: CodeRateLimited, Message: "rate limited", StatusCode: http.StatusTooManyRequests}
)

// StatusForCode maps an error code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Errorf builds an *Error with the given code and a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: StatusForCode(code),
	}
}

// NotFound builds a not-found error naming the missing entity.
func NotFound(entity string, id fmt.Stringer) *Error {
	return Errorf(CodeNotFound, "%s %s not found", entity, id)
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code string) bool {
	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}
