package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

// CartService keeps the Redis cart and the inventory reservation ledger in
// step: items in a cart hold reservations until they are checked out or
// removed.
type CartService struct {
	store Store
	cart  CartStore
	log   *log.Logger
}

func NewCartService(store Store, cart CartStore) *CartService {
	return &CartService{
		store: store,
		cart:  cart,
		log:   log.New(os.Stdout, "[cart] ", log.LstdFlags),
	}
}

func (s *CartService) Get(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	return s.cart.Get(ctx, customerID)
}

// AddItem reserves stock and puts the product in the cart. Adding an item
// already present raises its quantity.
func (s *CartService) AddItem(ctx context.Context, customerID, productID uuid.UUID, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	product, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %s is not for sale", ErrInvalidInput, product.Name)
	}

	if err := s.store.Inventory().Reserve(ctx, productID, qty); err != nil {
		return nil, err
	}

	cart, err := s.cart.Get(ctx, customerID)
	if err != nil {
		s.releaseQuiet(ctx, productID, qty)
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			cart.Items[i].Price = product.SellingPrice
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:   productID,
			ProductName: product.Name,
			Price:       product.SellingPrice,
			Quantity:    qty,
			Selected:    true,
		})
	}

	if err := s.cart.Save(ctx, customerID, cart); err != nil {
		s.releaseQuiet(ctx, productID, qty)
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity adjusts an item's quantity, moving the reservation delta.
// Zero removes the item.
func (s *CartService) UpdateQuantity(ctx context.Context, customerID, productID uuid.UUID, qty int) (*models.Cart, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if qty == 0 {
		return s.RemoveItem(ctx, customerID, productID)
	}

	cart, err := s.cart.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID != productID {
			continue
		}

		delta := qty - cart.Items[i].Quantity
		if delta > 0 {
			if err := s.store.Inventory().Reserve(ctx, productID, delta); err != nil {
				return nil, err
			}
		} else if delta < 0 {
			if err := s.store.Inventory().Release(ctx, productID, -delta); err != nil {
				return nil, err
			}
		}

		cart.Items[i].Quantity = qty
		if err := s.cart.Save(ctx, customerID, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	return nil, fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
}

// SetSelected flags or unflags an item for checkout.
func (s *CartService) SetSelected(ctx context.Context, customerID, productID uuid.UUID, selected bool) (*models.Cart, error) {
	cart, err := s.cart.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Selected = selected
			if err := s.cart.Save(ctx, customerID, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}

	return nil, fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
}

// RemoveItem releases the reservation and drops the item.
func (s *CartService) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.cart.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID != productID {
			continue
		}

		s.releaseQuiet(ctx, productID, cart.Items[i].Quantity)
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		if err := s.cart.Save(ctx, customerID, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	return nil, fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
}

// Clear drops the whole cart and releases every reservation it held.
func (s *CartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	cart, err := s.cart.Get(ctx, customerID)
	if err != nil {
		return err
	}
	for _, item := range cart.Items {
		s.releaseQuiet(ctx, item.ProductID, item.Quantity)
	}
	return s.cart.Clear(ctx, customerID)
}

func (s *CartService) releaseQuiet(ctx context.Context, productID uuid.UUID, qty int) {
	if err := s.store.Inventory().Release(ctx, productID, qty); err != nil {
		s.log.Printf("release reservation %s x%d failed: %v", productID, qty, err)
	}
}
