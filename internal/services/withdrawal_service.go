package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

// WithdrawalService handles specialist payouts. The wallet is debited when
// the request is made, so rejected requests must give the money back.
type WithdrawalService struct {
	store    Store
	payments PaymentRecorder
	log      *log.Logger
}

func NewWithdrawalService(store Store, payments PaymentRecorder) *WithdrawalService {
	return &WithdrawalService{
		store:    store,
		payments: payments,
		log:      log.New(os.Stdout, "[withdrawals] ", log.LstdFlags),
	}
}

// Request debits the user's wallet and opens a pending withdrawal request.
func (s *WithdrawalService) Request(ctx context.Context, userID uuid.UUID, amount float64, bankName, bankAccount string) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if bankName == "" || bankAccount == "" {
		return nil, fmt.Errorf("%w: bank name and account are required", ErrInvalidInput)
	}

	req := &models.WithdrawalRequest{
		UserID:      userID,
		Amount:      amount,
		BankName:    bankName,
		BankAccount: bankAccount,
		Status:      models.WithdrawalStatusPending,
	}
	err := s.store.InTx(ctx, func(tx Stores) error {
		if _, err := tx.Wallets().Adjust(ctx, userID, -amount); err != nil {
			return err
		}
		return tx.Withdrawals().Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Verify approves a pending request and opens the payout payment record. The
// record carries an LMW code so the outbound transfer is traceable, and its
// expiry window drives the stale-payout rejection sweep.
func (s *WithdrawalService) Verify(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	req, err := s.store.Withdrawals().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.WithdrawalStatusPending {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidInput, req.Status)
	}

	if err := s.store.Withdrawals().UpdateFields(ctx, req.ID, map[string]any{
		"status": models.WithdrawalStatusVerified,
	}); err != nil {
		return nil, err
	}
	req.Status = models.WithdrawalStatusVerified

	if _, err := s.payments.CreateRecord(ctx, CreatePaymentInput{
		CustomerID:   req.UserID,
		Purpose:      models.PurposeWithdraw,
		Method:       models.PaymentMethodBanking,
		Amount:       req.Amount,
		WithdrawalID: &req.ID,
	}); err != nil {
		s.log.Printf("payout record for withdrawal %s failed: %v", req.ID, err)
	}
	return req, nil
}

// Reject refunds the held amount and closes the request.
func (s *WithdrawalService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := s.store.InTx(ctx, func(tx Stores) error {
		var err error
		req, err = tx.Withdrawals().FindByID(ctx, id)
		if err != nil {
			return err
		}
		switch req.Status {
		case models.WithdrawalStatusPending, models.WithdrawalStatusVerified:
		default:
			return fmt.Errorf("%w: request is %s", ErrInvalidInput, req.Status)
		}
		if _, err := tx.Wallets().Adjust(ctx, req.UserID, req.Amount); err != nil {
			return err
		}
		return tx.Withdrawals().UpdateFields(ctx, req.ID, map[string]any{
			"status":           models.WithdrawalStatusRejected,
			"rejection_reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}
	req.Status = models.WithdrawalStatusRejected
	req.RejectionReason = reason
	return req, nil
}

// MarkPaid records that the payout transfer went out. The linked payment is
// completed so the expiry sweep leaves the request alone.
func (s *WithdrawalService) MarkPaid(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	req, err := s.store.Withdrawals().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.WithdrawalStatusVerified {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidInput, req.Status)
	}

	if err := s.store.Withdrawals().UpdateFields(ctx, req.ID, map[string]any{
		"status": models.WithdrawalStatusPaid,
	}); err != nil {
		return nil, err
	}
	req.Status = models.WithdrawalStatusPaid

	if p, err := s.store.Payments().FindByWithdrawalID(ctx, req.ID); err == nil {
		if err := s.payments.MarkCompleted(ctx, p.ID, p.Amount); err != nil {
			s.log.Printf("complete payout payment %s failed: %v", p.PaymentCode, err)
		}
	} else if !isNotFound(err) {
		s.log.Printf("lookup payout payment for withdrawal %s failed: %v", req.ID, err)
	}
	return req, nil
}

// ListByUser pages a user's withdrawal requests, newest first.
func (s *WithdrawalService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, int64, error) {
	return s.store.Withdrawals().ListByUser(ctx, userID, limit, offset)
}
