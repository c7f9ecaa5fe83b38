package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/lumera/internal/services"
)

// Store is the gorm-backed implementation of services.Store. A Store built
// from a transaction handle scopes every repository to that transaction.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn inside one database transaction. The Stores handed to fn share
// the transaction, so repository calls inside fn commit or roll back together.
func (s *Store) InTx(ctx context.Context, fn func(tx services.Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Payments() services.PaymentStore { return &paymentStore{db: s.db} }
func (s *Store) Orders() services.OrderStore { return &orderStore{db: s.db} }
func (s *Store) Shipping() services.ShippingStore { return &shippingStore{db: s.db} }
func (s *Store) Inventory() services.InventoryLedger { return &inventoryLedger{db: s.db} }
func (s *Store) Wallets() services.WalletLedger { return &walletLedger{db: s.db} }
func (s *Store) Users() services.UserStore { return &userStore{db: s.db} }
func (s *Store) Products() services.ProductStore { return &productStore{db: s.db} }
func (s *Store) Bookings() services.BookingStore { return &bookingStore{db: s.db} }
func (s *Store) Subscriptions() services.SubscriptionStore { return &subscriptionStore{db: s.db} }
func (s *Store) Withdrawals() services.WithdrawalStore { return &withdrawalStore{db: s.db} }

// mapErr normalizes gorm's not-found so services only ever see the sentinel.
func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}
