// Package common defines shared constants and sentinel errors used across
// client and server layers of ZeroShare. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Client-side crypto errors.
	ErrCrypto         = errors.New("crypto primitive failure")
	ErrAuthentication = errors.New("cannot decrypt: authentication failed")
	ErrFormat         = errors.New("malformed package")

	// Lifecycle denials. These are routine outcomes, not faults.
	ErrNotFound        = errors.New("not found")
	ErrExpired         = errors.New("expired")
	ErrAlreadyConsumed = errors.New("maximum downloads reached")

	// Upload/storage errors.
	ErrSizeExceeded  = errors.New("size exceeded")
	ErrAlreadyExists = errors.New("already exists")
	ErrStorage       = errors.New("storage failure")

	// Generic flow control.
	ErrInternal = errors.New("internal error")
)
