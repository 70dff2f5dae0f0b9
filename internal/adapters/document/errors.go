package document

import "errors"

// Pre-flight errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrTooLarge          = errors.New("document too large")
	ErrEmptyDocument     = errors.New("document is empty")
	ErrCorrupt           = errors.New("document is corrupt")
)
