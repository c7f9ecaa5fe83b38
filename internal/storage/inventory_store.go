package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/lumera/internal/models"
	"github.com/example/lumera/internal/services"
)

type inventoryLedger struct {
	db *gorm.DB
}

// mutate locks the inventory row, applies fn to the in-memory counts and
// writes them back. fn returning an error aborts with no change.
func (s *inventoryLedger) mutate(ctx context.Context, productID uuid.UUID, fn func(inv *models.Inventory) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Inventory
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", productID).
			First(&inv).Error; err != nil {
			return mapErr(err)
		}
		if err := fn(&inv); err != nil {
			return err
		}
		if inv.CurrentStock < 0 || inv.ReservedStock < 0 {
			return fmt.Errorf("%w: stock for %s would go negative", services.ErrInsufficientStock, productID)
		}
		return tx.Model(&models.Inventory{}).
			Where("id = ?", inv.ID).
			Updates(map[string]any{
				"current_stock":  inv.CurrentStock,
				"reserved_stock": inv.ReservedStock,
			}).Error
	})
}

func (s *inventoryLedger) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	return s.mutate(ctx, productID, func(inv *models.Inventory) error {
		if inv.CurrentStock-inv.ReservedStock < qty {
			return fmt.Errorf("%w: %d available, %d requested", services.ErrInsufficientStock, inv.CurrentStock-inv.ReservedStock, qty)
		}
		inv.ReservedStock += qty
		return nil
	})
}

func (s *inventoryLedger) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	return s.mutate(ctx, productID, func(inv *models.Inventory) error {
		inv.ReservedStock -= qty
		return nil
	})
}

func (s *inventoryLedger) ConfirmSale(ctx context.Context, productID uuid.UUID, qty int) error {
	return s.mutate(ctx, productID, func(inv *models.Inventory) error {
		if inv.ReservedStock < qty {
			return fmt.Errorf("%w: %d reserved, %d to confirm", services.ErrInsufficientStock, inv.ReservedStock, qty)
		}
		inv.ReservedStock -= qty
		inv.CurrentStock -= qty
		return nil
	})
}

func (s *inventoryLedger) CanConfirmSale(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	var inv models.Inventory
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&inv).Error; err != nil {
		return false, mapErr(err)
	}
	return inv.ReservedStock >= qty && inv.CurrentStock >= qty, nil
}

func (s *inventoryLedger) ReduceStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return s.mutate(ctx, productID, func(inv *models.Inventory) error {
		if inv.CurrentStock < qty {
			return fmt.Errorf("%w: %d in stock, %d to reduce", services.ErrInsufficientStock, inv.CurrentStock, qty)
		}
		inv.CurrentStock -= qty
		return nil
	})
}

func (s *inventoryLedger) Restock(ctx context.Context, productID uuid.UUID, qty int) error {
	return s.mutate(ctx, productID, func(inv *models.Inventory) error {
		inv.CurrentStock += qty
		return nil
	})
}

type productStore struct {
	db *gorm.DB
}

func (s *productStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}
