// Package common defines shared constants and sentinel errors used across
// the store, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound           = errors.New("not found")
	ErrorDuplicateKey       = errors.New("duplicate key")
	ErrorResourceInUse      = errors.New("resource in use")
	ErrorTransactionFailure = errors.New("transaction failure")

	// Service-level errors.
	ErrorAccessDenied    = errors.New("access denied")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorInvalidArgument = errors.New("invalid argument")
	ErrorInternal        = errors.New("internal error")

	// Ticket errors (invalid, malformed or expired session ticket).
	ErrInvalidToken = errors.New("invalid token")

	// Mail delivery is impossible without a configured server.
	ErrorMailNotConfigured = errors.New("mail server not configured")
)
