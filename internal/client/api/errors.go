package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnreachable оборачивает транспортные ошибки (сервер недоступен, таймаут).
var ErrUnreachable = errors.New("server unreachable")

// ErrInvalidResponse is returned when the server answers with data the client cannot use.
var ErrInvalidResponse = errors.New("invalid server response")

// Error ответ сервера с кодом вне диапазона 2xx.
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsTransient reports whether a retry later may succeed: the server was
// unreachable or answered with a 5xx status.
func IsTransient(err error) bool {
	if errors.Is(err, ErrUnreachable) {
		return true
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// IsNotFound reports whether the server answered 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
