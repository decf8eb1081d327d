package files

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("file metadata not found")
	ErrMissingTarget = errors.New("targetId is required")
	ErrBadPageKey    = errors.New("malformed pagination key")
)
