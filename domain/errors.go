package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrForbidden      = errors.New("forbidden")
	ErrStateViolation = errors.New("state violation")
	ErrGateway        = errors.New("scoring gateway failure")
)
