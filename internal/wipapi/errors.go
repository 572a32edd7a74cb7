package wipapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTenantNotFound    = errors.New("customer not found")
	ErrTenantInvalid     = errors.New("customer connection info is incomplete")
	ErrDetailUnavailable = errors.New("document detail unavailable")
	ErrNoDocumentID      = errors.New("backend returned no document id")
)

// AuthError — бэкенд ответил status=false на login.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "login rejected"
	}
	return "login rejected: " + e.Message
}

// RejectedError — status=false на операции записи.
type RejectedError struct {
	Endpoint string
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return e.Endpoint + ": rejected by backend"
	}
	return e.Endpoint + ": " + e.Message
}

// RequestError — ошибка транспорта: сеть, таймаут, HTTP-статус, битый JSON.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: request timed out", e.Endpoint)
	case e.StatusCode == http.StatusUnauthorized:
		return fmt.Sprintf("%s: unauthorized", e.Endpoint)
	case e.StatusCode == http.StatusNotFound:
		return fmt.Sprintf("%s: resource not found", e.Endpoint)
	case e.StatusCode >= 500:
		return fmt.Sprintf("%s: server error %d", e.Endpoint, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: http %d", e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	default:
		return e.Endpoint + ": network error"
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsNetwork — ошибка уровня транспорта (в т.ч. таймаут).
func IsNetwork(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

func IsTimeout(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Timeout
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
