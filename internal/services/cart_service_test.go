package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/example/lumera/internal/models"
)

func TestCartAddItemReservesStock(t *testing.T) {
	f := newFakeStore()
	cartStore := newFakeCartStore()
	svc := NewCartService(f, cartStore)

	customer := f.addUser(&models.User{})
	product := f.addProduct(&models.Product{Name: "Toner", SellingPrice: 120000, IsActive: true}, 5, 0)

	cart, err := svc.AddItem(context.Background(), customer.ID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 2, cart.Items[0].Quantity)
	require.True(t, cart.Items[0].Selected)
	require.Equal(t, float64(120000), cart.Items[0].Price)
	require.Equal(t, 2, f.inventory[product.ID].ReservedStock)

	// Adding again tops up the same line.
	cart, err = svc.AddItem(context.Background(), customer.ID, product.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 3, cart.Items[0].Quantity)
	require.Equal(t, 3, f.inventory[product.ID].ReservedStock)

	// Only 2 units remain unreserved.
	_, err = svc.AddItem(context.Background(), customer.ID, product.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 3, f.inventory[product.ID].ReservedStock)
}

func TestCartAddItemRejectsInactiveProduct(t *testing.T) {
	f := newFakeStore()
	svc := NewCartService(f, newFakeCartStore())

	customer := f.addUser(&models.User{})
	product := f.addProduct(&models.Product{Name: "Discontinued Serum", SellingPrice: 90000, IsActive: false}, 5, 0)

	_, err := svc.AddItem(context.Background(), customer.ID, product.ID, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, 0, f.inventory[product.ID].ReservedStock)
}

func TestCartUpdateQuantityMovesReservationDelta(t *testing.T) {
	f := newFakeStore()
	svc := NewCartService(f, newFakeCartStore())

	customer := f.addUser(&models.User{})
	product := f.addProduct(&models.Product{Name: "Toner", SellingPrice: 120000, IsActive: true}, 10, 0)

	_, err := svc.AddItem(context.Background(), customer.ID, product.ID, 2)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(context.Background(), customer.ID, product.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, cart.Items[0].Quantity)
	require.Equal(t, 5, f.inventory[product.ID].ReservedStock)

	cart, err = svc.UpdateQuantity(context.Background(), customer.ID, product.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, cart.Items[0].Quantity)
	require.Equal(t, 1, f.inventory[product.ID].ReservedStock)

	// Zero removes the line and frees the reservation.
	cart, err = svc.UpdateQuantity(context.Background(), customer.ID, product.ID, 0)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.Equal(t, 0, f.inventory[product.ID].ReservedStock)
}

func TestCartRemoveAndClearReleaseReservations(t *testing.T) {
	f := newFakeStore()
	cartStore := newFakeCartStore()
	svc := NewCartService(f, cartStore)

	customer := f.addUser(&models.User{})
	toner := f.addProduct(&models.Product{Name: "Toner", SellingPrice: 120000, IsActive: true}, 10, 0)
	mask := f.addProduct(&models.Product{Name: "Sheet Mask", SellingPrice: 30000, IsActive: true}, 10, 0)

	_, err := svc.AddItem(context.Background(), customer.ID, toner.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), customer.ID, mask.ID, 4)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(context.Background(), customer.ID, toner.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 0, f.inventory[toner.ID].ReservedStock)

	require.NoError(t, svc.Clear(context.Background(), customer.ID))
	require.Equal(t, 0, f.inventory[mask.ID].ReservedStock)

	cart, err = svc.Get(context.Background(), customer.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestCartSetSelected(t *testing.T) {
	f := newFakeStore()
	svc := NewCartService(f, newFakeCartStore())

	customer := f.addUser(&models.User{})
	product := f.addProduct(&models.Product{Name: "Toner", SellingPrice: 120000, IsActive: true}, 10, 0)

	_, err := svc.AddItem(context.Background(), customer.ID, product.ID, 1)
	require.NoError(t, err)

	cart, err := svc.SetSelected(context.Background(), customer.ID, product.ID, false)
	require.NoError(t, err)
	require.False(t, cart.Items[0].Selected)

	_, err = svc.SetSelected(context.Background(), customer.ID, uuid.New(), true)
	require.ErrorIs(t, err, ErrNotFound)
}
