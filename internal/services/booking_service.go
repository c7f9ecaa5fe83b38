package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/example/lumera/internal/models"
)

// BookingService manages appointment state around payments. It implements
// BookingDesk for the reconciliation engine.
type BookingService struct {
	store Store
	log   *log.Logger
}

func NewBookingService(store Store) *BookingService {
	return &BookingService{
		store: store,
		log:   log.New(os.Stdout, "[bookings] ", log.LstdFlags),
	}
}

// OpenSlots lists slots customers can still book, soonest first.
func (s *BookingService) OpenSlots(ctx context.Context) ([]models.AvailabilitySlot, error) {
	return s.store.Bookings().ListOpenSlots(ctx, time.Now())
}

// Hold takes an available slot for a customer and opens a payment-pending
// appointment on it. The slot lock serializes racing customers; the loser
// sees the slot already pending.
func (s *BookingService) Hold(ctx context.Context, customerID, slotID uuid.UUID) (*models.Appointment, error) {
	var appt *models.Appointment
	err := s.store.InTx(ctx, func(tx Stores) error {
		slot, err := tx.Bookings().FindSlotForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.Status != models.SlotStatusAvailable {
			return ErrSlotTaken
		}
		if !slot.StartTime.After(time.Now()) {
			return fmt.Errorf("%w: slot already started", ErrInvalidInput)
		}
		if err := tx.Bookings().UpdateSlotFields(ctx, slot.ID, map[string]any{
			"status": models.SlotStatusPending,
		}); err != nil {
			return err
		}
		appt = &models.Appointment{
			CustomerID: customerID,
			SlotID:     slot.ID,
			Status:     models.AppointmentStatusPendingPayment,
		}
		return tx.Bookings().CreateAppointment(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// ConfirmByPayment schedules the appointment a completed booking payment was
// opened for and books its slot.
func (s *BookingService) ConfirmByPayment(ctx context.Context, paymentID uuid.UUID) error {
	return s.store.InTx(ctx, func(tx Stores) error {
		appt, err := tx.Bookings().FindAppointmentByPayment(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("appointment for payment %s: %w", paymentID, err)
		}
		if appt.Status != models.AppointmentStatusPendingPayment {
			// Webhook retry after confirmation; nothing to do.
			return nil
		}
		if err := tx.Bookings().UpdateAppointmentFields(ctx, appt.ID, map[string]any{
			"status": models.AppointmentStatusScheduled,
		}); err != nil {
			return err
		}
		return tx.Bookings().UpdateSlotFields(ctx, appt.SlotID, map[string]any{
			"status": models.SlotStatusBooked,
		})
	})
}

// CancelPendingByPayment cancels a payment-pending appointment and frees its
// slot. Already scheduled or cancelled appointments are left alone.
func (s *BookingService) CancelPendingByPayment(ctx context.Context, paymentID uuid.UUID, note string) error {
	return s.store.InTx(ctx, func(tx Stores) error {
		return cancelPendingBookingTx(ctx, tx, paymentID, note)
	})
}

// SlotAvailableByPayment reports whether the slot behind a booking payment
// can still be taken by this appointment.
func (s *BookingService) SlotAvailableByPayment(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	return slotStillFree(ctx, s.store, paymentID)
}
