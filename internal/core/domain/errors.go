package domain

import (
	"errors"
	"fmt"
	"math/big"
)

// Validation errors.
var (
	ErrInvalidEntranceFee = errors.New("invalid entrance fee")
	ErrNotOpen            = errors.New("raffle not open")
	ErrTooEarly           = errors.New("raffle not eligible to close")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrRequestNotExpired  = errors.New("pending request not expired")
	ErrNotOperator        = errors.New("caller is not the operator")
)

// Correlation errors.
var (
	ErrUnknownRequest        = errors.New("nonexistent request")
	ErrUnauthorizedFulfiller = errors.New("only the coordinator can fulfill")
	ErrMissingRandomWords    = errors.New("missing random words")
)

// Transfer errors.
var (
	ErrTransferFailed = errors.New("transfer failed")
	ErrNotPayable     = errors.New("recipient does not accept value")
)

// ErrInvariantViolation marks errors that can only be caused by a bug.
var ErrInvariantViolation = errors.New("invariant violation")

type InvalidEntranceFeeError struct {
	EntranceFee *big.Int
	Value       *big.Int
}

func (e InvalidEntranceFeeError) Error() string {
	return fmt.Sprintf(
		"%s: expected %s, got %s", ErrInvalidEntranceFee, e.EntranceFee, e.Value,
	)
}

func (e InvalidEntranceFeeError) Unwrap() error {
	return ErrInvalidEntranceFee
}

// TooEarlyError carries the state the eligibility check was evaluated on.
type TooEarlyError struct {
	Balance    *big.Int
	NumPlayers int
	State      RaffleState
}

func (e TooEarlyError) Error() string {
	return fmt.Sprintf(
		"%s: balance %s, players %d, state %s",
		ErrTooEarly, e.Balance, e.NumPlayers, e.State,
	)
}

func (e TooEarlyError) Unwrap() error {
	return ErrTooEarly
}

type InvariantError struct {
	Reason string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvariantViolation, e.Reason)
}

func (e InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// IsValidationError reports whether err is expected during normal operation.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidEntranceFee, ErrNotOpen, ErrTooEarly, ErrInsufficientFunds,
		ErrInvalidAddress, ErrInvalidAmount, ErrRequestNotExpired, ErrNotOperator,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsCorrelationError reports whether err was caused by an unexpected fulfillment.
func IsCorrelationError(err error) bool {
	return errors.Is(err, ErrUnknownRequest) ||
		errors.Is(err, ErrUnauthorizedFulfiller) ||
		errors.Is(err, ErrMissingRandomWords)
}
