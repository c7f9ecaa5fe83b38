package models

import (
	"github.com/google/uuid"
)

// Cart lives in Redis, not Postgres. It is serialized as JSON under a
// per-customer key with a sliding TTL.
type Cart struct {
	Items []CartItem `json:"items"`
}

type CartItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Selected    bool      `json:"selected"`
}

// SelectedItems returns the items flagged for checkout.
func (c *Cart) SelectedItems() []CartItem {
	out := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Selected {
			out = append(out, item)
		}
	}
	return out
}

// ItemsByProductIDs filters the cart down to the given product IDs.
func (c *Cart) ItemsByProductIDs(ids []uuid.UUID) []CartItem {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]CartItem, 0, len(ids))
	for _, item := range c.Items {
		if want[item.ProductID] {
			out = append(out, item)
		}
	}
	return out
}
