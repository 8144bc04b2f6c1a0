package client

import (
	"errors"
	"net/http"

	"ngoledger/internal/domain"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork means the request could not complete.
	KindNetwork Kind = iota + 1
	// KindRejection means the backend answered with a non-2xx status.
	KindRejection
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejection:
		return "rejection"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method. Message is what the user sees:
// the backend's error field when present, otherwise the operation fallback.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the transport error for network failures and a domain
// sentinel for 401, 403 and 404 rejections.
func (e *Error) Unwrap() error {
	return e.Err
}

func rejection(op string, status int, message string) *Error {
	e := &Error{Kind: KindRejection, Op: op, Status: status, Message: message}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Err = domain.ErrUnauthorized
	case http.StatusNotFound:
		e.Err = domain.ErrNotFound
	}
	return e
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindNetwork
}

// IsRejection reports whether err is a backend rejection.
func IsRejection(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindRejection
}
