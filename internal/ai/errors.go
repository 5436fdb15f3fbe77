package ai

import "errors"

var (
	ErrUnknownProfile = errors.New("ai: unknown difficulty profile")
	ErrInvalidProfile = errors.New("ai: invalid profile")
)
