package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	AppointmentStatusPendingPayment = "PENDING_PAYMENT"
	AppointmentStatusScheduled      = "SCHEDULED"
	AppointmentStatusCancelled      = "CANCELLED"
)

// Slot statuses.
const (
	SlotStatusAvailable = "AVAILABLE"
	SlotStatusPending   = "PENDING"
	SlotStatusBooked    = "BOOKED"
)

// AvailabilitySlot is a bookable time window owned by a specialist.
type AvailabilitySlot struct {
	BaseModel
	SpecialistID uuid.UUID `gorm:"type:uuid;index" json:"specialist_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `gorm:"default:AVAILABLE" json:"status"`
}

// Appointment links a customer to a slot. It stays PENDING_PAYMENT until the
// booking payment completes.
type Appointment struct {
	BaseModel
	CustomerID       uuid.UUID         `gorm:"type:uuid;index" json:"customer_id"`
	SlotID           uuid.UUID         `gorm:"type:uuid;index" json:"slot_id"`
	Slot             *AvailabilitySlot `json:"slot,omitempty"`
	PaymentID        *uuid.UUID        `gorm:"type:uuid;index" json:"payment_id"`
	Status           string            `gorm:"index;default:PENDING_PAYMENT" json:"status"`
	CancellationNote string            `json:"cancellation_note"`
}
