package model

import "errors"

// Sentinel errors for record decoding.
var (
	ErrDecodeRecord       = errors.New("decode insight record")
	ErrUnsupportedPayload = errors.New("unsupported insight payload")
	ErrInvalidTime        = errors.New("invalid record time")
)
