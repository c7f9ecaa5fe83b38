package models

import (
	"github.com/google/uuid"
)

// Withdrawal request statuses.
const (
	WithdrawalStatusPending  = "PENDING"
	WithdrawalStatusVerified = "VERIFIED"
	WithdrawalStatusRejected = "REJECTED"
	WithdrawalStatusPaid     = "PAID"
)

// WithdrawalRequest tracks a payout from a user wallet to a bank account.
// A VERIFIED request waits for the operator transfer; the expiry job rejects
// requests whose linked payment never received one.
type WithdrawalRequest struct {
	BaseModel
	UserID          uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Amount          float64   `json:"amount"`
	BankName        string    `json:"bank_name"`
	BankAccount     string    `json:"bank_account"`
	Status          string    `gorm:"index;default:PENDING" json:"status"`
	RejectionReason string    `json:"rejection_reason"`
}
