package order

import "errors"

// Sentinel errors the handlers map onto HTTP status codes. Every operation
// wraps one of these with a message naming the offending entity; anything
// else that escapes the service is treated as an unhandled storage error.
var (
	ErrValidation   = errors.New("validation")    // 400
	ErrNotFound     = errors.New("not found")     // 404
	ErrInvalidState = errors.New("invalid state") // 400, status guard
)
