package payment

import (
	"errors"
	"fmt"
)

// Step identifies which leg of the gateway handshake failed.
type Step string

const (
	StepAuth  Step = "auth"
	StepOrder Step = "order"
	StepKey   Step = "key"
)

// StepError tags a handshake failure with the step that produced it, so
// "auth failed" is never conflated with "order failed" or "key failed".
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("gateway %s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAmountMismatch   = errors.New("amount mismatch")
	ErrNotConfigured    = errors.New("gateway credentials are not configured")
)
