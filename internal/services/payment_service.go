package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

const (
	// Banking payments must receive a transfer within this window.
	paymentExpiryWindow = 5 * time.Minute

	topupMinAmount = 10_000
	topupMaxAmount = 50_000_000
)

// Purpose-tagged payment code prefixes. Withdrawal codes exist for payout
// bookkeeping only and are deliberately outside the extraction pattern:
// inbound transfers never settle a withdrawal.
var codePrefixes = map[string]string{
	models.PurposeOrder:        "LMO",
	models.PurposeTopup:        "LMT",
	models.PurposeBooking:      "LMB",
	models.PurposeSubscription: "LMS",
	models.PurposeWithdraw:     "LMW",
}

var paymentCodePattern = regexp.MustCompile(`(?i)LM[OTBS][A-Z0-9]+`)

// GeneratePaymentCode builds a purpose-prefixed code from a fresh uuid and
// the current timestamp. Codes are what customers put in the bank transfer
// content field, so they stay short and upper-case.
func GeneratePaymentCode(purpose string) string {
	prefix, ok := codePrefixes[purpose]
	if !ok {
		prefix = "LMX"
	}
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	return prefix + raw[len(raw)-8:] + ts[len(ts)-6:]
}

// ExtractPaymentCode pulls the first payment code out of free-form transfer
// content. Banks mangle case and concatenate their own notes around the code,
// so the match is case-insensitive and the result normalized.
func ExtractPaymentCode(content string) string {
	return strings.ToUpper(paymentCodePattern.FindString(content))
}

// BankingInstructions tells the customer how to complete a banking payment.
type BankingInstructions struct {
	BankName        string  `json:"bank_name"`
	AccountNumber   string  `json:"account_number"`
	AccountName     string  `json:"account_name"`
	Amount          float64 `json:"amount"`
	TransferContent string  `json:"transfer_content"`
	QRCodeURL       string  `json:"qr_code_url"`
}

// BankDetails configures the receiving account for banking payments.
type BankDetails struct {
	BankName    string
	Account     string
	AccountName string
}

// PaymentService owns the payment ledger: record creation, lookup, the bank
// webhook reconciliation and the expiry sweep.
type PaymentService struct {
	store    Store
	cart     CartStore
	orders   OrderCreator
	subs     SubscriptionActivator
	bookings BookingDesk
	notifier Notifier
	bank     BankDetails
	log      *log.Logger
}

func NewPaymentService(store Store, cart CartStore, orders OrderCreator, subs SubscriptionActivator, bookings BookingDesk, notifier Notifier, bank BankDetails) *PaymentService {
	return &PaymentService{
		store:    store,
		cart:     cart,
		orders:   orders,
		subs:     subs,
		bookings: bookings,
		notifier: notifier,
		bank:     bank,
		log:      log.New(os.Stdout, "[payments] ", log.LstdFlags),
	}
}

// CreatePaymentInput carries everything needed to open a payment record.
// The cart snapshot and destination fields are only meaningful for ORDER
// purposes.
type CreatePaymentInput struct {
	CustomerID    uuid.UUID
	Purpose       string
	Method        string
	Amount        float64
	OrderID       *uuid.UUID
	PlanID        *uuid.UUID
	AppointmentID *uuid.UUID
	WithdrawalID  *uuid.UUID

	CartSnapshot    *models.Cart
	ShippingAddress string
	ToWardCode      string
	ToDistrictID    int
	OrderNotes      string
	ShippingMethod  string
}

// CreateRecord validates the purpose-specific reference, snapshots checkout
// context and persists a pending payment. Banking payments get an expiry
// deadline.
func (s *PaymentService) CreateRecord(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if _, ok := codePrefixes[in.Purpose]; !ok {
		return nil, fmt.Errorf("%w: unknown payment purpose %q", ErrInvalidInput, in.Purpose)
	}
	switch in.Method {
	case models.PaymentMethodBanking, models.PaymentMethodCash, models.PaymentMethodWallet:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.Method)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if in.Purpose == models.PurposeTopup && (in.Amount < topupMinAmount || in.Amount > topupMaxAmount) {
		return nil, fmt.Errorf("%w: topup must be between %d and %d", ErrAmountOutOfRange, topupMinAmount, topupMaxAmount)
	}

	if err := s.validateReference(ctx, in); err != nil {
		return nil, err
	}

	p := &models.Payment{
		PaymentCode:  GeneratePaymentCode(in.Purpose),
		Purpose:      in.Purpose,
		Method:       in.Method,
		Status:       models.PaymentStatusPending,
		Amount:       in.Amount,
		CustomerID:   in.CustomerID,
		OrderID:      in.OrderID,
		PlanID:       in.PlanID,
		WithdrawalID: in.WithdrawalID,
	}

	if in.CartSnapshot != nil {
		data, err := json.Marshal(in.CartSnapshot)
		if err != nil {
			return nil, fmt.Errorf("marshal cart snapshot: %w", err)
		}
		p.CartData = data
		p.ShippingAddress = in.ShippingAddress
		p.ToWardCode = in.ToWardCode
		p.ToDistrictID = in.ToDistrictID
		p.OrderNotes = in.OrderNotes
		p.ShippingMethod = in.ShippingMethod
	}

	if in.Method == models.PaymentMethodBanking {
		expires := time.Now().Add(paymentExpiryWindow)
		p.ExpiredAt = &expires
	}

	if err := s.store.Payments().Create(ctx, p); err != nil {
		return nil, err
	}

	if in.AppointmentID != nil {
		if err := s.store.Bookings().UpdateAppointmentFields(ctx, *in.AppointmentID, map[string]any{
			"payment_id": p.ID,
		}); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (s *PaymentService) validateReference(ctx context.Context, in CreatePaymentInput) error {
	switch in.Purpose {
	case models.PurposeOrder:
		if in.OrderID != nil {
			if _, err := s.store.Orders().FindByID(ctx, *in.OrderID); err != nil {
				return fmt.Errorf("order %s: %w", in.OrderID, err)
			}
		}
	case models.PurposeBooking:
		if in.AppointmentID == nil {
			return fmt.Errorf("%w: booking payment requires an appointment", ErrInvalidInput)
		}
		appt, err := s.store.Bookings().FindAppointment(ctx, *in.AppointmentID)
		if err != nil {
			return fmt.Errorf("appointment %s: %w", in.AppointmentID, err)
		}
		if appt.Status != models.AppointmentStatusPendingPayment {
			return fmt.Errorf("%w: appointment is not awaiting payment", ErrInvalidInput)
		}
	case models.PurposeSubscription:
		if in.PlanID == nil {
			return fmt.Errorf("%w: subscription payment requires a plan", ErrInvalidInput)
		}
		plan, err := s.store.Subscriptions().FindPlan(ctx, *in.PlanID)
		if err != nil {
			return fmt.Errorf("plan %s: %w", in.PlanID, err)
		}
		if !plan.IsActive {
			return fmt.Errorf("%w: plan is inactive", ErrInvalidInput)
		}
	case models.PurposeWithdraw:
		if in.WithdrawalID == nil {
			return fmt.Errorf("%w: withdraw payment requires a withdrawal request", ErrInvalidInput)
		}
		if _, err := s.store.Withdrawals().FindByID(ctx, *in.WithdrawalID); err != nil {
			return fmt.Errorf("withdrawal %s: %w", in.WithdrawalID, err)
		}
	}
	return nil
}

// Instructions renders the transfer details for a banking payment.
func (s *PaymentService) Instructions(p *models.Payment) BankingInstructions {
	qr := fmt.Sprintf("https://img.vietqr.io/image/%s-%s-compact2.png?amount=%.0f&addInfo=%s&accountName=%s",
		s.bank.BankName, s.bank.Account, p.Amount, p.PaymentCode, url.QueryEscape(s.bank.AccountName))
	return BankingInstructions{
		BankName:        s.bank.BankName,
		AccountNumber:   s.bank.Account,
		AccountName:     s.bank.AccountName,
		Amount:          p.Amount,
		TransferContent: p.PaymentCode,
		QRCodeURL:       qr,
	}
}

// MarkCompleted settles a payment outside the webhook path (wallet checkouts).
func (s *PaymentService) MarkCompleted(ctx context.Context, id uuid.UUID, paidAmount float64) error {
	now := time.Now()
	return s.store.Payments().UpdateFields(ctx, id, map[string]any{
		"status":      models.PaymentStatusCompleted,
		"paid_amount": paidAmount,
		"paid_at":     &now,
	})
}

// DeleteRecord removes a payment row during checkout compensation.
func (s *PaymentService) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.store.Payments().Delete(ctx, id)
}

// FindByCode returns the payment for a code, normalized.
func (s *PaymentService) FindByCode(ctx context.Context, code string) (*models.Payment, error) {
	return s.store.Payments().FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// FindByOrderID returns every payment attached to an order.
func (s *PaymentService) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	return s.store.Payments().FindByOrderID(ctx, orderID)
}

// ListByCustomer pages through a customer's payments, newest first.
func (s *PaymentService) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Payment, int64, error) {
	return s.store.Payments().ListByCustomer(ctx, customerID, limit, offset)
}

// RefundTopup reverses a completed topup: the wallet gives the money back and
// the payment flips to refunded, in one transaction.
func (s *PaymentService) RefundTopup(ctx context.Context, paymentID uuid.UUID) error {
	return s.store.InTx(ctx, func(tx Stores) error {
		p, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Purpose != models.PurposeTopup {
			return fmt.Errorf("%w: payment %s is not a topup", ErrInvalidInput, p.PaymentCode)
		}
		if p.Status != models.PaymentStatusCompleted {
			return fmt.Errorf("%w: payment %s is not completed", ErrInvalidInput, p.PaymentCode)
		}
		amount := p.PaidAmount
		if amount == 0 {
			amount = p.Amount
		}
		if _, err := tx.Wallets().Adjust(ctx, p.CustomerID, -amount); err != nil {
			return err
		}
		return tx.Payments().UpdateFields(ctx, p.ID, map[string]any{
			"status": models.PaymentStatusRefunded,
		})
	})
}

// ExpirePending is the scheduler sweep: every pending payment past its
// deadline flips to expired, linked bookings get cancelled and stale verified
// withdrawals rejected. Row failures are logged and the sweep continues.
func (s *PaymentService) ExpirePending(ctx context.Context) (int, error) {
	stale, err := s.store.Payments().FindExpiredPending(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, p := range stale {
		if err := s.expireOne(ctx, p); err != nil {
			s.log.Printf("expire %s failed: %v", p.PaymentCode, err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.log.Printf("expired %d pending payments", expired)
	}
	return expired, nil
}

func (s *PaymentService) expireOne(ctx context.Context, p models.Payment) error {
	if err := s.store.InTx(ctx, func(tx Stores) error {
		locked, err := tx.Payments().FindByCodeForUpdate(ctx, p.PaymentCode)
		if err != nil {
			return err
		}
		if locked.Status != models.PaymentStatusPending {
			return nil
		}
		if err := tx.Payments().UpdateFields(ctx, locked.ID, map[string]any{
			"status": models.PaymentStatusExpired,
		}); err != nil {
			return err
		}
		if locked.Purpose == models.PurposeWithdraw && locked.WithdrawalID != nil {
			wd, err := tx.Withdrawals().FindByID(ctx, *locked.WithdrawalID)
			if err != nil {
				return err
			}
			if wd.Status == models.WithdrawalStatusVerified {
				// The wallet was debited when the request was made.
				if _, err := tx.Wallets().Adjust(ctx, wd.UserID, wd.Amount); err != nil {
					return err
				}
				return tx.Withdrawals().UpdateFields(ctx, wd.ID, map[string]any{
					"status":           models.WithdrawalStatusRejected,
					"rejection_reason": "payment expired - no bank transfer received",
				})
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if p.Purpose == models.PurposeBooking {
		if err := s.bookings.CancelPendingByPayment(ctx, p.ID, "payment expired"); err != nil {
			s.log.Printf("cancel booking for expired payment %s failed: %v", p.PaymentCode, err)
		}
	}
	return nil
}
