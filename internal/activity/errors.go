package activity

import (
	"errors"
)

var (
	ErrInvalidAction = errors.New("invalid log action")
	ErrMissingField  = errors.New("log entry is missing a required field")
	ErrNotFound      = errors.New("log entry not found")
)
