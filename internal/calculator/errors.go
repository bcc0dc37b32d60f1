package calculator

import "errors"

var (
	ErrInvalidDigit     = errors.New("invalid digit")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrUnknownKey       = errors.New("unknown key")
	ErrSessionNotFound  = errors.New("session not found")
	ErrStoreFull        = errors.New("session limit reached")
)
