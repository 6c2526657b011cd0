package reconciliation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a missing or malformed field; the caller must
	// correct it and retry.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateClient is returned when a client code is already listed
	// in the arqueo's credit lines.
	ErrDuplicateClient = errors.New("client already in credit lines")
	// ErrLockedRecord is returned for any mutation outside today's arqueo.
	ErrLockedRecord = errors.New("arqueo is locked")
	// ErrSubmissionFailed matches every *SubmissionError.
	ErrSubmissionFailed = errors.New("submission failed")
)

// SubmissionError wraps a persistence failure during Submit. Steps that
// already completed are not rolled back.
type SubmissionError struct {
	Step string
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed at %s: %v", e.Step, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmissionFailed }

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
