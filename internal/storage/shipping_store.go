package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumera/internal/models"
)

var openShippingStatuses = []string{
	models.ShippingStatusPending,
	models.ShippingStatusPickedUp,
	models.ShippingStatusInTransit,
	models.ShippingStatusOutForDelivery,
}

type shippingStore struct {
	db *gorm.DB
}

func (s *shippingStore) Create(ctx context.Context, l *models.ShippingLog) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *shippingStore) Update(ctx context.Context, l *models.ShippingLog) error {
	return s.db.WithContext(ctx).Save(l).Error
}

func (s *shippingStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&models.ShippingLog{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *shippingStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingLog, error) {
	var l models.ShippingLog
	if err := s.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (s *shippingStore) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ShippingLog, error) {
	var l models.ShippingLog
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at desc").
		First(&l).Error; err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (s *shippingStore) FindByCarrierCode(ctx context.Context, ghnOrderCode string) (*models.ShippingLog, error) {
	var l models.ShippingLog
	if err := s.db.WithContext(ctx).
		Where("ghn_order_code = ?", ghnOrderCode).
		First(&l).Error; err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (s *shippingStore) FindByBatchCode(ctx context.Context, batchCode string) ([]models.ShippingLog, error) {
	var logs []models.ShippingLog
	if err := s.db.WithContext(ctx).
		Where("batch_code = ?", batchCode).
		Order("created_at asc").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *shippingStore) FindOpenCarrierLogs(ctx context.Context) ([]models.ShippingLog, error) {
	var logs []models.ShippingLog
	if err := s.db.WithContext(ctx).
		Where("ghn_order_code <> '' AND status IN ?", openShippingStatuses).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *shippingStore) FindStaleUnassigned(ctx context.Context, before time.Time) ([]models.ShippingLog, error) {
	var logs []models.ShippingLog
	if err := s.db.WithContext(ctx).
		Where("status = ? AND shipping_staff_id IS NULL AND created_at < ?", models.ShippingStatusPending, before).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
