// Package apperr holds the sentinel errors shared across snapcurator packages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidStep     = errors.New("invalid pipeline step")
	ErrIncompleteBoard = errors.New("featured board is incomplete")
	ErrSessionExpired  = errors.New("session expired")
)
