// Package common defines shared constants and sentinel errors used across
// the server and the carddavctl client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrorPersistence = errors.New("persistence error")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorValidation    = errors.New("validation error")
	ErrorConnectivity  = errors.New("no connection")
	ErrorSyncFailed    = errors.New("sync failed")
	ErrorSyncTimeout   = errors.New("sync timed out")
	ErrorCleanupFailed = errors.New("local cleanup failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
