package models

import (
	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	Slug         string  `gorm:"uniqueIndex" json:"slug"`
	Name         string  `json:"name"`
	SellingPrice float64 `json:"selling_price"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`
}

// Inventory tracks physical and reserved stock per product. ReservedStock is
// carried by unpaid orders; a confirmed sale releases the reservation and
// decrements CurrentStock in the same step.
type Inventory struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"product_id"`
	Product       *Product  `json:"product,omitempty"`
	CurrentStock  int       `json:"current_stock"`
	ReservedStock int       `json:"reserved_stock"`
}
