package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Shipping statuses. RETURNED is terminal.
const (
	ShippingStatusPending        = "PENDING"
	ShippingStatusPickedUp       = "PICKED_UP"
	ShippingStatusInTransit      = "IN_TRANSIT"
	ShippingStatusOutForDelivery = "OUT_FOR_DELIVERY"
	ShippingStatusDelivered      = "DELIVERED"
	ShippingStatusFailed         = "FAILED"
	ShippingStatusReturning      = "RETURNING"
	ShippingStatusReturned       = "RETURNED"
)

// Shipping methods.
const (
	ShippingMethodInternal = "internal"
	ShippingMethodGHN      = "ghn"
)

// ShippingLog is one delivery attempt for an order. Logs can be grouped into
// a same-customer batch identified by BatchCode.
type ShippingLog struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Order   *Order    `json:"order,omitempty"`

	Status         string  `gorm:"index;default:PENDING" json:"status"`
	ShippingMethod string  `json:"shipping_method"`
	ShippingFee    float64 `json:"shipping_fee"`
	CarrierName    string  `json:"carrier_name"`
	Note           string  `json:"note"`
	UnexpectedCase string  `json:"unexpected_case"`
	TotalAmount    float64 `json:"total_amount"`

	ShippingStaffID *uuid.UUID `gorm:"type:uuid;index" json:"shipping_staff_id"`

	// Carrier integration fields.
	GhnOrderCode    string  `gorm:"index" json:"ghn_order_code"`
	GhnSortCode     string  `json:"ghn_sort_code"`
	GhnShippingFee  float64 `json:"ghn_shipping_fee"`
	GhnTrackingData []byte  `gorm:"type:jsonb" json:"ghn_tracking_data"`

	// Batch delivery fields.
	BatchCode             string         `gorm:"index" json:"batch_code"`
	BatchCompletionPhotos pq.StringArray `gorm:"type:text[]" json:"batch_completion_photos"`
	BatchCompletionNote   string         `json:"batch_completion_note"`
	BatchCompletedAt      *time.Time     `json:"batch_completed_at"`

	// Proof of delivery and failure evidence.
	FinishedPictures pq.StringArray `gorm:"type:text[]" json:"finished_pictures"`

	CodCollected   bool    `json:"cod_collected"`
	TotalCodAmount float64 `json:"total_cod_amount"`

	DeliveredDate *time.Time `json:"delivered_date"`
	ReturnedDate  *time.Time `json:"returned_date"`
}
