package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/lumera/internal/models"
)

func TestOrderConfirm(t *testing.T) {
	f := newFakeStore()
	svc := NewOrderService(f, &fakeNotifier{})

	customer := f.addUser(&models.User{})
	staff := f.addUser(&models.User{Role: models.RoleStaff, IsActive: true})
	order := f.addOrder(&models.Order{CustomerID: customer.ID, Status: models.OrderStatusPending})

	confirmed, err := svc.Confirm(context.Background(), order.ID, staff.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
	require.Equal(t, staff.ID, *f.orders[order.ID].ProcessedBy)

	// Only PENDING orders can be confirmed.
	_, err = svc.Confirm(context.Background(), order.ID, staff.ID)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderCancelRestocksAndRefunds(t *testing.T) {
	f := newFakeStore()
	svc := NewOrderService(f, &fakeNotifier{})

	customer := f.addUser(&models.User{Balance: 0})
	staff := f.addUser(&models.User{Role: models.RoleStaff, IsActive: true})
	product := f.addProduct(&models.Product{Name: "Cleanser", SellingPrice: 150000, IsActive: true}, 8, 0)

	order := f.addOrder(&models.Order{
		CustomerID:  customer.ID,
		Status:      models.OrderStatusConfirmed,
		Paid:        true,
		TotalAmount: 300000,
		Items: []models.OrderItem{
			{ProductID: product.ID, ProductName: product.Name, PriceAtTime: 150000, Quantity: 2},
		},
	})
	f.addPayment(&models.Payment{
		PaymentCode: GeneratePaymentCode(models.PurposeOrder),
		Purpose:     models.PurposeOrder,
		Method:      models.PaymentMethodWallet,
		Status:      models.PaymentStatusCompleted,
		Amount:      300000,
		PaidAmount:  300000,
		CustomerID:  customer.ID,
		OrderID:     &order.ID,
	})

	cancelled, err := svc.Cancel(context.Background(), order.ID, "out of region", staff.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusRejected, cancelled.Status)
	require.Equal(t, "out of region", f.orders[order.ID].RejectionReason)
	require.Equal(t, 10, f.inventory[product.ID].CurrentStock)
	require.Equal(t, float64(300000), f.users[customer.ID].Balance)

	for _, p := range f.payments {
		require.Equal(t, models.PaymentStatusRefunded, p.Status)
	}

	// A rejected order cannot be rejected again.
	_, err = svc.Cancel(context.Background(), order.ID, "again", staff.ID)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderCompleteRequiresDelivered(t *testing.T) {
	f := newFakeStore()
	svc := NewOrderService(f, &fakeNotifier{})

	customer := f.addUser(&models.User{})
	order := f.addOrder(&models.Order{CustomerID: customer.ID, Status: models.OrderStatusShipping})

	_, err := svc.Complete(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrInvalidInput)

	f.orders[order.ID].Status = models.OrderStatusDelivered
	done, err := svc.Complete(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, done.Status)
}
