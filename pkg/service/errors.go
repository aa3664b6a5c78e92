package service

import "errors"

// ErrInvalidInput marks errors caused by the request rather than the service.
// It is always wrapped together with a more specific cause.
var ErrInvalidInput = errors.New("invalid input")

// ErrTextTooLong is returned when text exceeds the configured rune limit.
var ErrTextTooLong = errors.New("text too long")
