package models

import (
	"github.com/google/uuid"
)

// Order statuses. SHIPPING/DELIVERED/COMPLETED/CANCELLED are also driven by
// the shipping projection when a delivery advances.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipping   = "SHIPPING"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
	// REJECTED is a staff decision, CANCELLED a delivery outcome.
	OrderStatusRejected = "REJECTED"
)

type Order struct {
	BaseModel
	CustomerID uuid.UUID  `gorm:"type:uuid;index" json:"customer_id"`
	Customer   *User      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PaymentID  *uuid.UUID `gorm:"type:uuid;index" json:"payment_id"`
	Status     string     `gorm:"index;default:PENDING" json:"status"`
	Paid       bool       `json:"paid"`

	TotalAmount     float64 `json:"total_amount"`
	ShippingAddress string  `json:"shipping_address"`
	ToWardCode      string  `json:"to_ward_code"`
	ToDistrictID    int     `json:"to_district_id"`
	ShippingMethod  string  `json:"shipping_method"`
	Notes           string  `json:"notes"`
	RejectionReason string  `json:"rejection_reason"`

	ProcessedBy *uuid.UUID `gorm:"type:uuid" json:"processed_by"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	ProductName string    `json:"product_name"`
	PriceAtTime float64   `json:"price_at_time"`
	Quantity    int       `json:"quantity"`
}
