package services

import (
	"errors"
	"fmt"
)

// Sentinel errors. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoSelection       = errors.New("no items selected for checkout")
	ErrAmountOutOfRange  = errors.New("amount out of allowed range")
	ErrInvalidTransition = errors.New("invalid shipping status transition")
	ErrBatchCompleted    = errors.New("batch already completed")
	ErrBatchMixed        = errors.New("batch orders must belong to one customer")
	ErrBatchNotReady     = errors.New("all batch orders must be pending for pickup")
	ErrMissingEvidence   = errors.New("missing required delivery evidence")
	ErrSlotTaken         = errors.New("slot is no longer available")
)

// ManualInterventionError marks a reconciliation outcome an operator has to
// resolve by hand. The webhook still acks; the error carries the context for
// the alert.
type ManualInterventionError struct {
	PaymentCode string
	Reason      string
}

func (e *ManualInterventionError) Error() string {
	return fmt.Sprintf("payment %s requires manual intervention: %s", e.PaymentCode, e.Reason)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
