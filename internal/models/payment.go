package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusRefunded  = "refunded"
)

// Payment methods.
const (
	PaymentMethodBanking = "banking"
	PaymentMethodCash    = "cash"
	PaymentMethodWallet  = "wallet"
)

// Payment purposes. The purpose tag selects which post-completion effect the
// reconciliation engine runs.
const (
	PurposeOrder        = "ORDER"
	PurposeTopup        = "TOPUP"
	PurposeWithdraw     = "WITHDRAW"
	PurposeBooking      = "BOOKING"
	PurposeSubscription = "SUBSCRIPTION"
)

// Payment is the ledger row every money movement goes through. Banking
// payments carry a unique PaymentCode that the bank webhook matches on;
// ORDER payments additionally snapshot the checkout context so the order can
// be created after the transfer lands.
type Payment struct {
	BaseModel
	PaymentCode string  `gorm:"uniqueIndex" json:"payment_code"`
	Purpose     string  `gorm:"column:payment_type;index" json:"payment_type"`
	Method      string  `gorm:"column:payment_method" json:"payment_method"`
	Status      string  `gorm:"index;default:pending" json:"status"`
	Amount      float64 `json:"amount"`
	PaidAmount  float64 `json:"paid_amount"`

	CustomerID   uuid.UUID  `gorm:"type:uuid;index" json:"customer_id"`
	OrderID      *uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	PlanID       *uuid.UUID `gorm:"type:uuid" json:"plan_id"`
	WithdrawalID *uuid.UUID `gorm:"type:uuid" json:"withdrawal_id"`

	// Bank transfer audit trail, populated by the webhook.
	Gateway         string     `json:"gateway"`
	AccountNumber   string     `json:"account_number"`
	ReferenceCode   string     `json:"reference_code"`
	TransferContent string     `json:"transfer_content"`
	BankTxID        int64      `gorm:"column:bank_tx_id" json:"bank_tx_id"`
	TransactionDate *time.Time `json:"transaction_date"`
	WebhookData     []byte     `gorm:"type:jsonb" json:"webhook_data"`

	// Checkout snapshot for ORDER payments.
	CartData        []byte `gorm:"type:jsonb" json:"cart_data"`
	ShippingAddress string `json:"shipping_address"`
	ToWardCode      string `json:"to_ward_code"`
	ToDistrictID    int    `json:"to_district_id"`
	OrderNotes      string `json:"order_notes"`
	ShippingMethod  string `json:"shipping_method"`

	ExpiredAt *time.Time `json:"expired_at"`
	PaidAt    *time.Time `json:"paid_at"`
}
