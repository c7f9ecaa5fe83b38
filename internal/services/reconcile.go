package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

// BankWebhookInput is the payload the bank gateway posts for every transfer
// touching the configured account.
type BankWebhookInput struct {
	ID              int64   `json:"id"`
	Gateway         string  `json:"gateway"`
	TransactionDate string  `json:"transactionDate"`
	AccountNumber   string  `json:"accountNumber"`
	Content         string  `json:"content"`
	TransferType    string  `json:"transferType"`
	TransferAmount  float64 `json:"transferAmount"`
	ReferenceCode   string  `json:"referenceCode"`
	Description     string  `json:"description"`
}

// WebhookResult is what goes back to the gateway. The endpoint always acks
// with HTTP 200; Success=false only signals that an operator has work to do.
type WebhookResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	PaymentCode string `json:"payment_code,omitempty"`
}

// reconcile outcomes decided inside the transaction.
const (
	outcomeUnknown   = "unknown_code"
	outcomeDuplicate = "duplicate"
	outcomeRefunded  = "refunded_to_wallet"
	outcomeUnderpaid = "underpaid"
	outcomeCompleted = "completed"
	outcomeConflict  = "revival_conflict"
)

// HandleBankWebhook reconciles one bank transfer against the payment ledger.
// Everything that mutates the ledger happens in a single transaction holding
// a row lock on the payment, so concurrent webhook retries serialize.
// Post-completion effects run after commit; their failure is reported but can
// never unwind the settled payment.
func (s *PaymentService) HandleBankWebhook(ctx context.Context, in BankWebhookInput) (*WebhookResult, error) {
	if in.TransferType != "in" {
		return &WebhookResult{Success: true, Message: "outbound transfer ignored"}, nil
	}

	code := ExtractPaymentCode(in.Content)
	if code == "" {
		s.log.Printf("webhook %d: no payment code in content %q", in.ID, in.Content)
		return &WebhookResult{Success: true, Message: "no payment code found"}, nil
	}

	raw, _ := json.Marshal(in)

	var (
		payment *models.Payment
		outcome string
	)

	err := s.store.InTx(ctx, func(tx Stores) error {
		p, err := tx.Payments().FindByCodeForUpdate(ctx, code)
		if err != nil {
			if isNotFound(err) {
				outcome = outcomeUnknown
				return nil
			}
			return err
		}
		payment = p

		switch p.Status {
		case models.PaymentStatusCompleted:
			outcome = outcomeDuplicate
			return nil

		case models.PaymentStatusFailed, models.PaymentStatusRefunded:
			// The money landed against a dead payment. Park it in the
			// customer's wallet instead of losing track of it.
			if _, err := tx.Wallets().Adjust(ctx, p.CustomerID, in.TransferAmount); err != nil {
				return err
			}
			outcome = outcomeRefunded
			return tx.Payments().UpdateFields(ctx, p.ID, s.auditFields(in, raw))

		case models.PaymentStatusExpired:
			if p.Purpose == models.PurposeBooking {
				free, err := slotStillFree(ctx, tx, p.ID)
				if err != nil {
					return err
				}
				if !free {
					outcome = outcomeConflict
					return tx.Payments().UpdateFields(ctx, p.ID, s.auditFields(in, raw))
				}
			}
			// Late transfer, slot (if any) still open: revive and settle.
			return s.settle(ctx, tx, p, in, raw, &outcome)

		case models.PaymentStatusPending:
			return s.settle(ctx, tx, p, in, raw, &outcome)
		}

		return fmt.Errorf("payment %s has unexpected status %q", code, p.Status)
	})
	if err != nil {
		return nil, err
	}

	switch outcome {
	case outcomeUnknown:
		s.log.Printf("webhook %d: code %s matches no payment", in.ID, code)
		return &WebhookResult{Success: true, Message: "payment not found", PaymentCode: code}, nil

	case outcomeDuplicate:
		s.log.Printf("webhook %d: payment %s already completed", in.ID, code)
		return &WebhookResult{Success: true, Message: "payment already completed", PaymentCode: code}, nil

	case outcomeRefunded:
		s.log.Printf("webhook %d: payment %s is %s, %.0f refunded to wallet", in.ID, code, payment.Status, in.TransferAmount)
		return &WebhookResult{Success: true, Message: "transfer refunded to customer wallet", PaymentCode: code}, nil

	case outcomeUnderpaid:
		s.log.Printf("webhook %d: payment %s underpaid (%.0f of %.0f), refunded and failed", in.ID, code, in.TransferAmount, payment.Amount)
		return &WebhookResult{Success: true, Message: "insufficient amount, transfer refunded to wallet", PaymentCode: code}, nil

	case outcomeConflict:
		reason := "late transfer for expired booking, slot no longer available"
		s.notifier.NotifyManualIntervention(code, reason)
		return &WebhookResult{Success: false, Message: reason, PaymentCode: code},
			&ManualInterventionError{PaymentCode: code, Reason: reason}

	case outcomeCompleted:
		if err := s.runPostCompletion(ctx, payment); err != nil {
			s.log.Printf("CRITICAL: payment %s settled but post-completion failed: %v", code, err)
			s.notifier.NotifyManualIntervention(code, fmt.Sprintf("settled but effects failed: %v", err))
			return &WebhookResult{Success: false, Message: "payment settled, follow-up processing failed", PaymentCode: code}, err
		}
		s.notifier.NotifyPaymentReceived(code, payment.PaidAmount)
		return &WebhookResult{Success: true, Message: "payment completed", PaymentCode: code}, nil
	}

	return &WebhookResult{Success: true, Message: "acknowledged", PaymentCode: code}, nil
}

// settle decides completion vs underpayment for a live payment row. Runs
// inside the webhook transaction with the row lock held.
func (s *PaymentService) settle(ctx context.Context, tx Stores, p *models.Payment, in BankWebhookInput, raw []byte, outcome *string) error {
	fields := s.auditFields(in, raw)

	if in.TransferAmount < p.Amount {
		// Partial transfers cannot be topped up later; give the whole
		// transfer back and fail the payment.
		if _, err := tx.Wallets().Adjust(ctx, p.CustomerID, in.TransferAmount); err != nil {
			return err
		}
		fields["status"] = models.PaymentStatusFailed
		if err := tx.Payments().UpdateFields(ctx, p.ID, fields); err != nil {
			return err
		}
		if p.Purpose == models.PurposeBooking {
			if err := cancelPendingBookingTx(ctx, tx, p.ID, "payment failed: insufficient amount"); err != nil {
				return err
			}
		}
		*outcome = outcomeUnderpaid
		return nil
	}

	if in.TransferAmount > p.Amount {
		s.log.Printf("payment %s overpaid: %.0f for %.0f", p.PaymentCode, in.TransferAmount, p.Amount)
	}

	now := time.Now()
	fields["status"] = models.PaymentStatusCompleted
	fields["paid_amount"] = in.TransferAmount
	fields["paid_at"] = &now
	if err := tx.Payments().UpdateFields(ctx, p.ID, fields); err != nil {
		return err
	}

	p.Status = models.PaymentStatusCompleted
	p.PaidAmount = in.TransferAmount
	p.PaidAt = &now
	*outcome = outcomeCompleted
	return nil
}

func (s *PaymentService) auditFields(in BankWebhookInput, raw []byte) map[string]any {
	fields := map[string]any{
		"gateway":          in.Gateway,
		"account_number":   in.AccountNumber,
		"reference_code":   in.ReferenceCode,
		"transfer_content": in.Content,
		"bank_tx_id":       in.ID,
		"webhook_data":     raw,
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", in.TransactionDate); err == nil {
		fields["transaction_date"] = &ts
	}
	return fields
}

// runPostCompletion dispatches the purpose-specific effect after the ledger
// transaction committed.
func (s *PaymentService) runPostCompletion(ctx context.Context, p *models.Payment) error {
	switch p.Purpose {
	case models.PurposeOrder:
		order, err := s.orders.CreateFromPayment(ctx, p)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.store.Payments().UpdateFields(ctx, p.ID, map[string]any{"order_id": order.ID}); err != nil {
			return fmt.Errorf("link order: %w", err)
		}
		if ids := purchasedProductIDs(p.CartData); len(ids) > 0 {
			if err := s.cart.RemoveItems(ctx, p.CustomerID, ids); err != nil {
				// The order exists; a stale cart is an annoyance, not a loss.
				s.log.Printf("clear cart for %s failed: %v", p.PaymentCode, err)
			}
		}
		return nil

	case models.PurposeTopup:
		amount := p.PaidAmount
		if amount == 0 {
			amount = p.Amount
		}
		if _, err := s.store.Wallets().Adjust(ctx, p.CustomerID, amount); err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}
		return nil

	case models.PurposeSubscription:
		return s.subs.Activate(ctx, p)

	case models.PurposeBooking:
		return s.bookings.ConfirmByPayment(ctx, p.ID)
	}

	// Unreachable: WITHDRAW codes sit outside the extraction pattern and
	// every other purpose is handled above.
	s.log.Printf("CRITICAL: completed payment %s has undispatchable purpose %q", p.PaymentCode, p.Purpose)
	return fmt.Errorf("no completion effect for purpose %q", p.Purpose)
}

func purchasedProductIDs(cartData []byte) []uuid.UUID {
	if len(cartData) == 0 {
		return nil
	}
	var cart models.Cart
	if err := json.Unmarshal(cartData, &cart); err != nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// slotStillFree reports whether the slot behind a booking payment can still
// be taken by this appointment.
func slotStillFree(ctx context.Context, tx Stores, paymentID uuid.UUID) (bool, error) {
	appt, err := tx.Bookings().FindAppointmentByPayment(ctx, paymentID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	slot, err := tx.Bookings().FindSlot(ctx, appt.SlotID)
	if err != nil {
		return false, err
	}
	return slot.Status != models.SlotStatusBooked, nil
}

func cancelPendingBookingTx(ctx context.Context, tx Stores, paymentID uuid.UUID, note string) error {
	appt, err := tx.Bookings().FindAppointmentByPayment(ctx, paymentID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if appt.Status != models.AppointmentStatusPendingPayment {
		return nil
	}
	if err := tx.Bookings().UpdateAppointmentFields(ctx, appt.ID, map[string]any{
		"status":            models.AppointmentStatusCancelled,
		"cancellation_note": note,
	}); err != nil {
		return err
	}
	return tx.Bookings().UpdateSlotFields(ctx, appt.SlotID, map[string]any{
		"status": models.SlotStatusAvailable,
	})
}
