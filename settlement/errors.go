package settlement

import "errors"

// Failure taxonomy surfaced by the settlement contracts. Handlers map each to
// a distinct HTTP status and user-facing message.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEvidence    = errors.New("invalid payment evidence")
	ErrNotFound           = errors.New("order not found")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrStorage            = errors.New("storage failure")
	ErrConflict           = errors.New("conflicting settlement state")
)
