package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/lumera/internal/models"
)

type paymentStore struct {
	db *gorm.DB
}

func (s *paymentStore) Create(ctx context.Context, p *models.Payment) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *paymentStore) Update(ctx context.Context, p *models.Payment) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *paymentStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *paymentStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id).Error
}

func (s *paymentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *paymentStore) FindByCode(ctx context.Context, code string) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).
		Where("payment_code = ?", code).
		First(&p).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *paymentStore) FindByCodeForUpdate(ctx context.Context, code string) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_code = ?", code).
		First(&p).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *paymentStore) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at desc").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *paymentStore) FindByWithdrawalID(ctx context.Context, withdrawalID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).
		Where("withdrawal_id = ?", withdrawalID).
		Order("created_at desc").
		First(&p).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *paymentStore) FindExpiredPending(ctx context.Context, now time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.WithContext(ctx).
		Where("status = ? AND expired_at IS NOT NULL AND expired_at < ?", models.PaymentStatusPending, now).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *paymentStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Payment, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Payment{}).Where("customer_id = ?", customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	if err := query.Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
