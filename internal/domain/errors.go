package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrGatewayFailure   = errors.New("payment gateway failure")
	ErrLedgerFailure    = errors.New("ledger failure")
)
