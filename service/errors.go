package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for every terminal operation outcome. Callers match
// with errors.Is; the messages travel to the gateway layer as-is. Only
// ErrStorageUnavailable is safe to retry. Retrying a transfer or
// purchase after any other failure risks double settlement.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrItemNotFound        = errors.New("item not found")
	ErrAlreadyClaimedToday = errors.New("daily reward already claimed today")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrAccountNotFound     = errors.New("account not found")

	ErrSelfTransfer     = errors.New("cannot transfer to yourself")
	ErrPayLimitExceeded = errors.New("transfer exceeds rank pay limit")
	ErrNotItemOwner     = errors.New("item belongs to another member")
	ErrTierRequired     = errors.New("rank tier too low for this action")
	ErrBumpOnCooldown   = errors.New("item bump is on cooldown")
)

// storageErr wraps a driver-level failure so callers can treat every
// storage fault uniformly via errors.Is(err, ErrStorageUnavailable).
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
