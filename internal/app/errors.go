package service

import "errors"

// Controller errors.
var (
	ErrNoFile           = errors.New("no file selected")
	ErrUploadInProgress = errors.New("an upload is already in progress")
	ErrUnknownScope     = errors.New("unknown score scope")
)
