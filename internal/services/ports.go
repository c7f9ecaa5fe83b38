package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

// Stores bundles the repositories a service may touch. Implementations hand
// back plain model structs; transaction scoping is handled by Store.InTx.
type Stores interface {
	Payments() PaymentStore
	Orders() OrderStore
	Shipping() ShippingStore
	Inventory() InventoryLedger
	Wallets() WalletLedger
	Users() UserStore
	Products() ProductStore
	Bookings() BookingStore
	Subscriptions() SubscriptionStore
	Withdrawals() WithdrawalStore
}

// Store is the top-level persistence handle. InTx runs fn inside a single
// database transaction; every repository obtained from the tx-scoped Stores
// shares that transaction.
type Store interface {
	Stores
	InTx(ctx context.Context, fn func(tx Stores) error) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	Update(ctx context.Context, p *models.Payment) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByCode(ctx context.Context, code string) (*models.Payment, error)
	// FindByCodeForUpdate acquires a row lock; only valid inside InTx.
	FindByCodeForUpdate(ctx context.Context, code string) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	FindByWithdrawalID(ctx context.Context, withdrawalID uuid.UUID) (*models.Payment, error)
	FindExpiredPending(ctx context.Context, now time.Time) ([]models.Payment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Payment, int64, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteItems(ctx context.Context, orderID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error)
}

type ShippingStore interface {
	Create(ctx context.Context, l *models.ShippingLog) error
	Update(ctx context.Context, l *models.ShippingLog) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingLog, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ShippingLog, error)
	FindByCarrierCode(ctx context.Context, ghnOrderCode string) (*models.ShippingLog, error)
	FindByBatchCode(ctx context.Context, batchCode string) ([]models.ShippingLog, error)
	// FindOpenCarrierLogs returns GHN-backed logs that have not reached a
	// settled status yet.
	FindOpenCarrierLogs(ctx context.Context) ([]models.ShippingLog, error)
	FindStaleUnassigned(ctx context.Context, before time.Time) ([]models.ShippingLog, error)
}

// InventoryLedger guards physical and reserved stock. Every mutation rejects
// counts that would go negative.
type InventoryLedger interface {
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	Release(ctx context.Context, productID uuid.UUID, qty int) error
	// ConfirmSale converts a reservation into a sale: both reserved and
	// current stock decrement.
	ConfirmSale(ctx context.Context, productID uuid.UUID, qty int) error
	CanConfirmSale(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	// ReduceStock decrements current stock directly, bypassing reservations.
	// Used when a paid order is created straight from a webhook.
	ReduceStock(ctx context.Context, productID uuid.UUID, qty int) error
	Restock(ctx context.Context, productID uuid.UUID, qty int) error
}

// WalletLedger mutates user balances atomically. Adjust with a negative delta
// returns ErrInsufficientFunds instead of driving the balance below zero.
type WalletLedger interface {
	Adjust(ctx context.Context, userID uuid.UUID, delta float64) (newBalance float64, err error)
	Balance(ctx context.Context, userID uuid.UUID) (float64, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	ActiveStaff(ctx context.Context) ([]models.User, error)
}

type ProductStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type BookingStore interface {
	FindAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	FindAppointmentByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	UpdateAppointmentFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindSlot(ctx context.Context, id uuid.UUID) (*models.AvailabilitySlot, error)
	FindSlotForUpdate(ctx context.Context, id uuid.UUID) (*models.AvailabilitySlot, error)
	ListOpenSlots(ctx context.Context, after time.Time) ([]models.AvailabilitySlot, error)
	UpdateSlotFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

type SubscriptionStore interface {
	FindPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
	CreateSubscription(ctx context.Context, s *models.CustomerSubscription) error
}

type WithdrawalStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
	Create(ctx context.Context, w *models.WithdrawalRequest) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

// CartStore is the Redis-backed cart. Reads and writes refresh the TTL.
type CartStore interface {
	Get(ctx context.Context, customerID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, customerID uuid.UUID, cart *models.Cart) error
	RemoveItems(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) error
	Clear(ctx context.Context, customerID uuid.UUID) error
}

// CarrierGateway is the outbound shipping-provider client.
type CarrierGateway interface {
	CreateOrder(ctx context.Context, req CarrierOrderRequest) (*CarrierOrderResult, error)
	OrderDetail(ctx context.Context, orderCode string) (*CarrierOrderDetail, error)
	CancelOrder(ctx context.Context, orderCode string) error
	// ResolveAddressCodes turns typed region names into the carrier's
	// routing codes. Unresolved parts come back as zero values.
	ResolveAddressCodes(ctx context.Context, q AddressQuery) (AddressCodes, error)
}

// AddressQuery carries the free-text region names a customer typed at
// checkout.
type AddressQuery struct {
	Province string
	District string
	Ward     string
}

// IsZero reports whether no region name was given at all.
func (q AddressQuery) IsZero() bool {
	return q.Province == "" && q.District == "" && q.Ward == ""
}

// AddressCodes holds the carrier identifiers for a destination.
type AddressCodes struct {
	ProvinceID int
	DistrictID int
	WardCode   string
}

type CarrierOrderRequest struct {
	ToName       string
	ToPhone      string
	ToAddress    string
	ToWardCode   string
	ToDistrictID int
	CodAmount    float64
	Weight       int
	Note         string
}

type CarrierOrderResult struct {
	OrderCode string
	SortCode  string
	TotalFee  float64
}

type CarrierOrderDetail struct {
	OrderCode string
	Status    string
	Raw       []byte
}

// Notifier delivers operator alerts. Implementations must not block the
// caller; failures are logged, never returned.
type Notifier interface {
	NotifyManualIntervention(paymentCode, reason string)
	NotifyPaymentReceived(paymentCode string, amount float64)
	NotifyDeliveryFailed(orderID uuid.UUID, reason string)
}

// Capability interfaces handed to the reconciliation engine so it never holds
// whole services.

type OrderCreator interface {
	CreateFromPayment(ctx context.Context, p *models.Payment) (*models.Order, error)
}

type SubscriptionActivator interface {
	Activate(ctx context.Context, p *models.Payment) error
}

type BookingDesk interface {
	// ConfirmByPayment moves a pending appointment to SCHEDULED and books
	// its slot.
	ConfirmByPayment(ctx context.Context, paymentID uuid.UUID) error
	// CancelPendingByPayment cancels a pending appointment and frees the slot.
	CancelPendingByPayment(ctx context.Context, paymentID uuid.UUID, note string) error
	// SlotAvailableByPayment reports whether the appointment's slot can still
	// be taken, used when reviving an expired booking payment.
	SlotAvailableByPayment(ctx context.Context, paymentID uuid.UUID) (bool, error)
}
