package auth

import "errors"

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrReadCredentials    = errors.New("failed to read credentials")
	ErrWriteCredentials   = errors.New("failed to write credentials")
	ErrTokenExpired       = errors.New("token expired")
)
