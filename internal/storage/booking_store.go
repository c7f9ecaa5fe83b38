package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/lumera/internal/models"
)

type bookingStore struct {
	db *gorm.DB
}

func (s *bookingStore) FindAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *bookingStore) FindAppointmentByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&a).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *bookingStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *bookingStore) UpdateAppointmentFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *bookingStore) FindSlot(ctx context.Context, id uuid.UUID) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &slot, nil
}

func (s *bookingStore) FindSlotForUpdate(ctx context.Context, id uuid.UUID) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &slot, nil
}

func (s *bookingStore) ListOpenSlots(ctx context.Context, after time.Time) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	if err := s.db.WithContext(ctx).
		Where("status = ? AND start_time > ?", models.SlotStatusAvailable, after).
		Order("start_time asc").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *bookingStore) UpdateSlotFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("id = ?", id).
		Updates(fields).Error
}

type subscriptionStore struct {
	db *gorm.DB
}

func (s *subscriptionStore) FindPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &plan, nil
}

func (s *subscriptionStore) CreateSubscription(ctx context.Context, sub *models.CustomerSubscription) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

type withdrawalStore struct {
	db *gorm.DB
}

func (s *withdrawalStore) FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &w, nil
}

func (s *withdrawalStore) Create(ctx context.Context, w *models.WithdrawalRequest) error {
	return s.db.WithContext(ctx).Create(w).Error
}

func (s *withdrawalStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, int64, error) {
	var (
		rows  []models.WithdrawalRequest
		total int64
	)
	q := s.db.WithContext(ctx).Model(&models.WithdrawalRequest{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *withdrawalStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.WithdrawalRequest{}).
		Where("id = ?", id).
		Updates(fields).Error
}
