// Package apperr defines the error taxonomy shared by every store operation
// and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Code categorizes an operation failure.
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeMediaNotFound   Code = "MEDIA_NOT_FOUND"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeInternal        Code = "INTERNAL"
)

// Error is a classified failure. Two Errors match under errors.Is when their codes are equal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "not authenticated"}
	ErrForbidden       = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrMediaNotFound   = &Error{Code: CodeMediaNotFound, Message: "media not found"}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
)

func Unauthenticated(msg string) error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// NotFound reports a missing entity, e.g. NotFound("post").
func NotFound(entity string) error {
	return &Error{Code: CodeNotFound, Message: entity + " not found"}
}

func MediaNotFound(ref string) error {
	return &Error{Code: CodeMediaNotFound, Message: "media " + ref + " not found"}
}

func InvalidArgument(msg string) error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

// CodeOf returns the code of err, CodeInternal when err is unclassified.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

var statusByCode = map[Code]int{
	CodeUnauthenticated: http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeMediaNotFound:   http.StatusNotFound,
	CodeInvalidArgument: http.StatusBadRequest,
	CodeRateLimited:     http.StatusTooManyRequests,
}

// ToHTTP converts err to the echo error returned by handlers.
// Unclassified errors become 500 without leaking their text.
func ToHTTP(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var e *Error
	if errors.As(err, &e) {
		if status, ok := statusByCode[e.Code]; ok {
			return echo.NewHTTPError(status, echo.Map{"code": e.Code, "message": e.Message}).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{"code": CodeInternal, "message": "internal error"}).SetInternal(err)
}
