package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

// Default destination codes for the Thủ Đức region, used when neither the
// request nor the customer profile carries address codes.
const (
	defaultDistrictID = 1442
	defaultWardCode   = "21012"
)

// PaymentRecorder is the slice of the payment service checkout needs.
type PaymentRecorder interface {
	CreateRecord(ctx context.Context, in CreatePaymentInput) (*models.Payment, error)
	Instructions(p *models.Payment) BankingInstructions
	MarkCompleted(ctx context.Context, id uuid.UUID, paidAmount float64) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
}

// ShipmentOpener creates the delivery record for a freshly paid order.
type ShipmentOpener interface {
	OpenForOrder(ctx context.Context, order *models.Order, method string) (*models.ShippingLog, error)
	ResolveDestinationCodes(ctx context.Context, q AddressQuery) AddressCodes
}

// CheckoutService turns a cart into a payment and, for settled methods, an
// order. It owns the compensation path: nothing it creates survives a partial
// failure.
type CheckoutService struct {
	store    Store
	cart     CartStore
	payments PaymentRecorder
	shipping ShipmentOpener
	log      *log.Logger
}

func NewCheckoutService(store Store, cart CartStore, payments PaymentRecorder, shipping ShipmentOpener) *CheckoutService {
	return &CheckoutService{
		store:    store,
		cart:     cart,
		payments: payments,
		shipping: shipping,
		log:      log.New(os.Stdout, "[checkout] ", log.LstdFlags),
	}
}

type CheckoutInput struct {
	CustomerID         uuid.UUID
	PaymentMethod      string
	SelectedProductIDs []uuid.UUID
	// ClientTotal, when positive, takes precedence over the recomputed sum.
	ClientTotal     float64
	ShippingAddress string
	ToWardCode      string
	ToDistrictID    int
	// Region names, resolved to carrier codes when no codes were sent.
	Province       string
	District       string
	Ward           string
	Notes          string
	ShippingMethod string
}

type CheckoutResult struct {
	Payment      *models.Payment      `json:"payment"`
	Instructions *BankingInstructions `json:"instructions,omitempty"`
	Order        *models.Order        `json:"order,omitempty"`
	ShippingLog  *models.ShippingLog  `json:"shipping_log,omitempty"`
}

// Checkout runs the whole flow. Banking stops after the payment record and
// transfer instructions; wallet and cash create the order immediately.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	customer, err := s.store.Users().FindByID(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer: %w", err)
	}

	switch in.PaymentMethod {
	case models.PaymentMethodBanking, models.PaymentMethodWallet, models.PaymentMethodCash:
	default:
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, in.PaymentMethod)
	}

	cart, err := s.cart.Get(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := s.selectItems(cart, in.SelectedProductIDs)
	if len(items) == 0 {
		return nil, ErrNoSelection
	}

	for _, item := range items {
		ok, err := s.store.Inventory().CanConfirmSale(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, item.ProductName)
		}
	}

	total := in.ClientTotal
	if total <= 0 {
		for _, item := range items {
			total += item.Price * float64(item.Quantity)
		}
	}

	address, wardCode, districtID := s.resolveDestination(ctx, in, customer)

	snapshot := &models.Cart{Items: make([]models.CartItem, len(items))}
	copy(snapshot.Items, items)
	for i := range snapshot.Items {
		snapshot.Items[i].Selected = true
	}

	paymentInput := CreatePaymentInput{
		CustomerID:      in.CustomerID,
		Purpose:         models.PurposeOrder,
		Method:          in.PaymentMethod,
		Amount:          total,
		CartSnapshot:    snapshot,
		ShippingAddress: address,
		ToWardCode:      wardCode,
		ToDistrictID:    districtID,
		OrderNotes:      in.Notes,
		ShippingMethod:  in.ShippingMethod,
	}

	if in.PaymentMethod == models.PaymentMethodBanking {
		payment, err := s.payments.CreateRecord(ctx, paymentInput)
		if err != nil {
			return nil, err
		}
		instructions := s.payments.Instructions(payment)
		return &CheckoutResult{Payment: payment, Instructions: &instructions}, nil
	}

	return s.checkoutSettled(ctx, in, customer, items, total, paymentInput)
}

// checkoutSettled handles wallet and cash: debit (wallet only), then payment,
// order, items, stock confirmation, with a full compensating unwind on any
// failure past the debit.
func (s *CheckoutService) checkoutSettled(ctx context.Context, in CheckoutInput, customer *models.User, items []models.CartItem, total float64, paymentInput CreatePaymentInput) (*CheckoutResult, error) {
	walletDebited := false
	if in.PaymentMethod == models.PaymentMethodWallet {
		if _, err := s.store.Wallets().Adjust(ctx, in.CustomerID, -total); err != nil {
			return nil, err
		}
		walletDebited = true
	}

	refundWallet := func() {
		if !walletDebited {
			return
		}
		if _, err := s.store.Wallets().Adjust(ctx, in.CustomerID, total); err != nil {
			s.log.Printf("CRITICAL: wallet refund of %.0f for customer %s failed: %v", total, in.CustomerID, err)
		}
	}

	payment, err := s.payments.CreateRecord(ctx, paymentInput)
	if err != nil {
		refundWallet()
		return nil, err
	}

	orderStatus := models.OrderStatusPending
	paid := false
	if in.PaymentMethod == models.PaymentMethodWallet {
		orderStatus = models.OrderStatusConfirmed
		paid = true
	}

	order := &models.Order{
		CustomerID:      in.CustomerID,
		PaymentID:       &payment.ID,
		Status:          orderStatus,
		Paid:            paid,
		TotalAmount:     total,
		ShippingAddress: paymentInput.ShippingAddress,
		ToWardCode:      paymentInput.ToWardCode,
		ToDistrictID:    paymentInput.ToDistrictID,
		ShippingMethod:  in.ShippingMethod,
		Notes:           in.Notes,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			PriceAtTime: item.Price,
			Quantity:    item.Quantity,
		})
	}

	if err := s.store.Orders().Create(ctx, order); err != nil {
		s.compensate(ctx, nil, payment.ID, nil)
		refundWallet()
		return nil, err
	}

	confirmed := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if err := s.store.Inventory().ConfirmSale(ctx, item.ProductID, item.Quantity); err != nil {
			s.compensate(ctx, &order.ID, payment.ID, confirmed)
			refundWallet()
			return nil, fmt.Errorf("confirm sale for %s: %w", item.ProductName, err)
		}
		confirmed = append(confirmed, item)
	}

	if err := s.store.Payments().UpdateFields(ctx, payment.ID, map[string]any{"order_id": order.ID}); err != nil {
		s.log.Printf("link payment %s to order %s failed: %v", payment.PaymentCode, order.ID, err)
	}
	payment.OrderID = &order.ID

	if in.PaymentMethod == models.PaymentMethodWallet {
		if err := s.payments.MarkCompleted(ctx, payment.ID, total); err != nil {
			s.log.Printf("mark payment %s completed failed: %v", payment.PaymentCode, err)
		}
		payment.Status = models.PaymentStatusCompleted
		payment.PaidAmount = total
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	if err := s.cart.RemoveItems(ctx, in.CustomerID, ids); err != nil {
		s.log.Printf("remove checked-out items from cart %s failed: %v", in.CustomerID, err)
	}

	result := &CheckoutResult{Payment: payment, Order: order}

	if in.PaymentMethod == models.PaymentMethodWallet && in.ShippingMethod != "" {
		shippingLog, err := s.shipping.OpenForOrder(ctx, order, in.ShippingMethod)
		if err != nil {
			// The order is paid; delivery can be arranged manually.
			s.log.Printf("open shipment for order %s failed: %v", order.ID, err)
		} else {
			result.ShippingLog = shippingLog
		}
	}

	return result, nil
}

// compensate deletes the rows created so far and puts confirmed stock back.
func (s *CheckoutService) compensate(ctx context.Context, orderID *uuid.UUID, paymentID uuid.UUID, confirmed []models.CartItem) {
	for _, item := range confirmed {
		if err := s.store.Inventory().Restock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Printf("restock %s x%d failed: %v", item.ProductID, item.Quantity, err)
			continue
		}
		if err := s.store.Inventory().Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Printf("re-reserve %s x%d failed: %v", item.ProductID, item.Quantity, err)
		}
	}
	if orderID != nil {
		if err := s.store.Orders().DeleteItems(ctx, *orderID); err != nil {
			s.log.Printf("delete order items %s failed: %v", orderID, err)
		}
		if err := s.store.Orders().Delete(ctx, *orderID); err != nil {
			s.log.Printf("delete order %s failed: %v", orderID, err)
		}
	}
	if err := s.payments.DeleteRecord(ctx, paymentID); err != nil {
		s.log.Printf("delete payment %s failed: %v", paymentID, err)
	}
}

func (s *CheckoutService) selectItems(cart *models.Cart, explicit []uuid.UUID) []models.CartItem {
	if len(explicit) > 0 {
		return cart.ItemsByProductIDs(explicit)
	}
	if selected := cart.SelectedItems(); len(selected) > 0 {
		return selected
	}
	return cart.Items
}

// resolveDestination cascades request codes, then carrier resolution of any
// typed region names, then the customer profile, then the default region.
func (s *CheckoutService) resolveDestination(ctx context.Context, in CheckoutInput, customer *models.User) (address, wardCode string, districtID int) {
	address = in.ShippingAddress
	if address == "" {
		address = customer.ShippingAddress
	}

	wardCode = in.ToWardCode
	districtID = in.ToDistrictID

	query := AddressQuery{Province: in.Province, District: in.District, Ward: in.Ward}
	if in.ShippingMethod == models.ShippingMethodGHN && (wardCode == "" || districtID == 0) && !query.IsZero() {
		codes := s.shipping.ResolveDestinationCodes(ctx, query)
		if districtID == 0 {
			districtID = codes.DistrictID
		}
		if wardCode == "" {
			wardCode = codes.WardCode
		}
	}

	if wardCode == "" || districtID == 0 {
		wardCode = customer.WardCode
		districtID = customer.DistrictID
	}
	if wardCode == "" || districtID == 0 {
		wardCode = defaultWardCode
		districtID = defaultDistrictID
	}
	return address, wardCode, districtID
}
