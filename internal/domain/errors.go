package domain

import "errors"

var (
	ErrInvalidStatus   = errors.New("domain: invalid status")
	ErrInvalidSettings = errors.New("domain: invalid settings")
	ErrInvalidCard     = errors.New("domain: invalid card")
)
