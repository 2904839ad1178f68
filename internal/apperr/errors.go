package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrManifestUnreadable = errors.New("manifest unreadable")
	ErrInvalidConfig      = errors.New("invalid config")
)
