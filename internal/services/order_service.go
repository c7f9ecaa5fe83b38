package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

// OrderService owns order lifecycle outside of delivery: creation from paid
// payments, manual confirmation, cancellation with restock and refund, and
// completion.
type OrderService struct {
	store    Store
	notifier Notifier
	log      *log.Logger
}

func NewOrderService(store Store, notifier Notifier) *OrderService {
	return &OrderService{
		store:    store,
		notifier: notifier,
		log:      log.New(os.Stdout, "[orders] ", log.LstdFlags),
	}
}

// CreateFromPayment materializes the order a completed ORDER payment was
// opened for, using the cart snapshot taken at checkout. The payment is
// settled money, so stock discrepancies are logged and never block creation.
func (s *OrderService) CreateFromPayment(ctx context.Context, p *models.Payment) (*models.Order, error) {
	if len(p.CartData) == 0 {
		return nil, fmt.Errorf("%w: payment %s has no cart snapshot", ErrInvalidInput, p.PaymentCode)
	}

	var cart models.Cart
	if err := json.Unmarshal(p.CartData, &cart); err != nil {
		return nil, fmt.Errorf("decode cart snapshot for %s: %w", p.PaymentCode, err)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: payment %s snapshot is empty", ErrInvalidInput, p.PaymentCode)
	}

	total := p.PaidAmount
	if total == 0 {
		total = p.Amount
	}

	order := &models.Order{
		CustomerID:      p.CustomerID,
		PaymentID:       &p.ID,
		Status:          models.OrderStatusConfirmed,
		Paid:            true,
		TotalAmount:     total,
		ShippingAddress: p.ShippingAddress,
		ToWardCode:      p.ToWardCode,
		ToDistrictID:    p.ToDistrictID,
		ShippingMethod:  p.ShippingMethod,
		Notes:           p.OrderNotes,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			PriceAtTime: item.Price,
			Quantity:    item.Quantity,
		})
	}

	if err := s.store.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		if err := s.store.Inventory().ReduceStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Printf("CRITICAL: reduce stock %s x%d for paid order %s failed: %v", item.ProductID, item.Quantity, order.ID, err)
		}
	}

	return order, nil
}

// Confirm moves a pending (cash) order to CONFIRMED.
func (s *OrderService) Confirm(ctx context.Context, orderID, staffID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidInput, orderID, order.Status)
	}
	if err := s.store.Orders().UpdateFields(ctx, orderID, map[string]any{
		"status":       models.OrderStatusConfirmed,
		"processed_by": staffID,
	}); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusConfirmed
	order.ProcessedBy = &staffID
	return order, nil
}

// Cancel rejects an order that has not shipped yet: stock goes back, a
// wallet-settled payment is refunded to the wallet.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, reason string, staffID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidInput, orderID, order.Status)
	}

	for _, item := range order.Items {
		if err := s.store.Inventory().Restock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Printf("restock %s x%d on cancel of %s failed: %v", item.ProductID, item.Quantity, orderID, err)
		}
	}

	if err := s.refundOrderPayments(ctx, order); err != nil {
		return nil, err
	}

	if err := s.store.Orders().UpdateFields(ctx, orderID, map[string]any{
		"status":           models.OrderStatusRejected,
		"rejection_reason": reason,
		"processed_by":     staffID,
	}); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusRejected
	order.RejectionReason = reason
	return order, nil
}

func (s *OrderService) refundOrderPayments(ctx context.Context, order *models.Order) error {
	payments, err := s.store.Payments().FindByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if p.Status != models.PaymentStatusCompleted {
			continue
		}
		amount := p.PaidAmount
		if amount == 0 {
			amount = p.Amount
		}
		if err := s.store.InTx(ctx, func(tx Stores) error {
			if _, err := tx.Wallets().Adjust(ctx, p.CustomerID, amount); err != nil {
				return err
			}
			return tx.Payments().UpdateFields(ctx, p.ID, map[string]any{
				"status": models.PaymentStatusRefunded,
			})
		}); err != nil {
			return fmt.Errorf("refund payment %s: %w", p.PaymentCode, err)
		}
		s.log.Printf("payment %s refunded %.0f to wallet on order cancel", p.PaymentCode, amount)
	}
	return nil
}

// Complete closes a delivered order.
func (s *OrderService) Complete(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidInput, orderID, order.Status)
	}
	if err := s.store.Orders().UpdateFields(ctx, orderID, map[string]any{
		"status": models.OrderStatusCompleted,
	}); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusCompleted
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.store.Orders().FindByID(ctx, orderID)
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error) {
	return s.store.Orders().ListByCustomer(ctx, customerID, status, limit, offset)
}
