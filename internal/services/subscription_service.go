package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/lumera/internal/models"
)

// subscriptionFeeRate is the platform's cut of every subscription sale; the
// rest is credited to the specialist's wallet.
const subscriptionFeeRate = 0.2

// SubscriptionService activates plans bought through subscription payments.
// It implements SubscriptionActivator.
type SubscriptionService struct {
	store Store
	log   *log.Logger
}

func NewSubscriptionService(store Store) *SubscriptionService {
	return &SubscriptionService{
		store: store,
		log:   log.New(os.Stdout, "[subscriptions] ", log.LstdFlags),
	}
}

// Activate creates the customer subscription and pays the specialist their
// revenue share, atomically.
func (s *SubscriptionService) Activate(ctx context.Context, p *models.Payment) error {
	if p.PlanID == nil {
		return fmt.Errorf("%w: payment %s has no plan", ErrInvalidInput, p.PaymentCode)
	}

	plan, err := s.store.Subscriptions().FindPlan(ctx, *p.PlanID)
	if err != nil {
		return fmt.Errorf("plan %s: %w", p.PlanID, err)
	}

	amount := p.PaidAmount
	if amount == 0 {
		amount = p.Amount
	}
	specialistShare := amount * (1 - subscriptionFeeRate)

	start := time.Now()
	sub := &models.CustomerSubscription{
		CustomerID:        p.CustomerID,
		PlanID:            plan.ID,
		PaymentID:         &p.ID,
		SessionsRemaining: plan.TotalSessions,
		IsActive:          true,
		StartDate:         start,
		EndDate:           start.AddDate(0, 0, plan.DurationInDays),
	}

	if err := s.store.InTx(ctx, func(tx Stores) error {
		if err := tx.Subscriptions().CreateSubscription(ctx, sub); err != nil {
			return err
		}
		_, err := tx.Wallets().Adjust(ctx, plan.SpecialistID, specialistShare)
		return err
	}); err != nil {
		return err
	}

	s.log.Printf("subscription %s activated for customer %s, %.0f credited to specialist %s",
		plan.PlanName, p.CustomerID, specialistShare, plan.SpecialistID)
	return nil
}
