package cinevault

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrContentNotFound indicates a content item was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrRentalNotFound indicates no rental record exists for the lookup
	ErrRentalNotFound = errors.New("rental not found")

	// ErrInvalidInput indicates malformed input (empty URI, zero price, zero id)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotAuthorized indicates the caller lacks the required role
	ErrNotAuthorized = errors.New("caller lacks required role")

	// ErrInvalidStatus indicates the entry point was invoked from a status
	// that does not permit the transition
	ErrInvalidStatus = errors.New("operation not allowed in current status")

	// ErrAlreadyLiked indicates the account has already liked the content
	ErrAlreadyLiked = errors.New("content already liked")

	// ErrInsufficientFunds indicates the payer cannot cover the required amount
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientBalance indicates the platform escrow cannot cover a withdrawal
	ErrInsufficientBalance = errors.New("insufficient platform balance")

	// ErrReentrantCall indicates a nested call back into a mutating entry
	// point before its enclosing call committed
	ErrReentrantCall = errors.New("reentrant call")

	// ErrPaused indicates the pause switch is engaged
	ErrPaused = errors.New("service is paused")

	// ErrRegistryUnavailable indicates a failed call to the external rights registry
	ErrRegistryUnavailable = errors.New("registry call failed")
)

// ContentError represents an error related to content lifecycle operations
type ContentError struct {
	ContentID int64
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for content %d: %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// RentalError represents an error related to rental operations
type RentalError struct {
	ContentID int64
	Renter    string
	Op        string
	Err       error
}

func (e *RentalError) Error() string {
	return fmt.Sprintf("rental operation %s failed for content %d renter %s: %v", e.Op, e.ContentID, e.Renter, e.Err)
}

func (e *RentalError) Unwrap() error {
	return e.Err
}

// SettlementError represents an error raised while moving funds
type SettlementError struct {
	Token string
	Op    string
	Err   error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement operation %s failed for token %q: %v", e.Op, e.Token, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
