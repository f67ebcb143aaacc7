package booking

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("booking not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrForbidden        = errors.New("forbidden")
	ErrReasonRequired   = errors.New("rejection reason required")
	ErrConflictingState = errors.New("conflicting booking state")
	ErrExpired          = errors.New("approval window expired")
)
