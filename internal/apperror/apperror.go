// server/internal/apperror/apperror.go

// Package apperror carries operational errors with the HTTP status they map to.
package apperror

import (
	"errors"
	"net/http"
)

// AppError is an expected failure whose message is safe to show to clients.
type AppError struct {
	StatusCode int
	Message    string
}

func (e *AppError) Error() string { return e.Message }

// Status is "fail" for client errors and "error" otherwise.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

func New(statusCode int, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message}
}

func BadRequest(message string) *AppError   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *AppError { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *AppError    { return New(http.StatusForbidden, message) }
func NotFound(message string) *AppError     { return New(http.StatusNotFound, message) }
func Conflict(message string) *AppError     { return New(http.StatusConflict, message) }

// As unwraps err into an *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Common messages.
var (
	ErrInvalidID          = BadRequest("Invalid id.")
	ErrShopNotFound       = NotFound("Coffee Shop not found.")
	ErrBeanNotFound       = NotFound("Bean not found.")
	ErrZoneNotFound       = NotFound("Zone not found.")
	ErrUserNotFound       = NotFound("User not found.")
	ErrInvalidCredentials = Unauthorized("Invalid Credentials.")
	ErrEmailInUse         = Conflict("Email already in use.")
	ErrSlugInUse          = Conflict("A coffee shop with this slug already exists.")
	ErrInvalidZoneShape   = BadRequest("Zone polygon is not a valid shape.")
	ErrNoToken            = Unauthorized("Access denied. No token provided.")
	ErrInvalidToken       = Forbidden("Invalid or expired token.")
	ErrForbiddenRole      = Forbidden("You do not have permission to access this resource.")
	ErrUploadsDisabled    = New(http.StatusServiceUnavailable, "Image uploads are not configured.")
)
