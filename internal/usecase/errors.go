package usecase

import "fmt"

// ValidationError means the user's input does not match the current step.
// It is recovered locally: the same step is re-prompted, state does not
// advance and nothing is propagated upward.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	_, ok := err.(ValidationError)
	return ok
}

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// ErrNoSession is returned by Submit when the user has no active session.
var ErrNoSession = &DomainError{Code: "NO_SESSION", Message: "no active session"}

// ErrUnknownFlow is returned by Begin for a flow name that was never registered.
var ErrUnknownFlow = &DomainError{Code: "UNKNOWN_FLOW", Message: "unknown flow"}
