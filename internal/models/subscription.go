package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionPlan is sold by a specialist; the platform keeps a fee share of
// every activation.
type SubscriptionPlan struct {
	BaseModel
	SpecialistID   uuid.UUID `gorm:"type:uuid;index" json:"specialist_id"`
	PlanName       string    `json:"plan_name"`
	Price          float64   `json:"price"`
	DurationInDays int       `json:"duration_in_days"`
	TotalSessions  int       `json:"total_sessions"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
}

type CustomerSubscription struct {
	BaseModel
	CustomerID        uuid.UUID         `gorm:"type:uuid;index" json:"customer_id"`
	PlanID            uuid.UUID         `gorm:"type:uuid;index" json:"plan_id"`
	Plan              *SubscriptionPlan `json:"plan,omitempty"`
	PaymentID         *uuid.UUID        `gorm:"type:uuid" json:"payment_id"`
	SessionsRemaining int               `json:"sessions_remaining"`
	IsActive          bool              `gorm:"default:true" json:"is_active"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
}
