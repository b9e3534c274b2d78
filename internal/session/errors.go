package session

import "errors"

var (
	// ErrNotFound is returned for unknown or evicted session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrClosed is returned by every operation on a closed session.
	ErrClosed = errors.New("session closed")
	// ErrInvalidTransition is returned for status edges outside the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrLocked is returned when the draft is edited while a transaction is not idle.
	ErrLocked = errors.New("session is locked while a transaction is in progress")
	// ErrBusy is returned when a simulated operation is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrStepBounds is returned when advancing past the last step or retreating before the first.
	ErrStepBounds = errors.New("step out of range")
	// ErrWrongStep is returned when an operation is invoked from a screen other than its own.
	ErrWrongStep = errors.New("operation not available on the current step")
	// ErrUnknownField is returned by SetField for names outside PaymentDetails.
	ErrUnknownField = errors.New("unknown field")
	// ErrWalletNotConnected is returned when the connected wallet is used before one is reported.
	ErrWalletNotConnected = errors.New("no wallet connected")
)
