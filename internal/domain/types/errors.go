package types

import "errors"

// Sentinel errors for parsing user input.
var (
	ErrUnknownView      = errors.New("unknown view")
	ErrUnknownSortOrder = errors.New("unknown sort order")
)
