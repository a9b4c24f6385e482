package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and controllers.
var (
	ErrSellerNotFound       = errors.New("seller not found")
	ErrAccountNotRegistered = errors.New("seller has no payment account yet")
	ErrUnsupportedPurpose   = errors.New("unsupported document purpose")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrDocumentTooLarge     = errors.New("document exceeds the maximum allowed size")
)

type InputValidationError struct {
	Message string `json:"message"`
	Field   string `json:"field"`
	Tag     string `json:"tag"`
}

func (err *InputValidationError) Error() string {
	return err.Message
}

// ProviderError wraps a rejection or failure reported by the external
// payment provider. It is never retried automatically for mutating calls
// and is surfaced to the caller with the provider's own detail.
type ProviderError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("payment provider rejected %s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("payment provider call %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// TransientError is a timeout or connection failure talking to an
// external service. Idempotent reads may retry it with backoff; account
// creation must not.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// StateConflictError signals an operation that is invalid for the
// account's current onboarding state, e.g. checkout against a seller
// that is not verified.
type StateConflictError struct {
	Op      string
	State   AccountState
	Message string
}

func (e *StateConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is not allowed while the seller account is %s", e.Op, e.State)
}

func NewStateConflict(op string, state AccountState, message string) *StateConflictError {
	return &StateConflictError{Op: op, State: state, Message: message}
}

func IsValidationError(err error) bool {
	var ve *InputValidationError
	return errors.As(err, &ve)
}

func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

func IsTransientError(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}
