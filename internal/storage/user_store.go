package storage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/lumera/internal/models"
	"github.com/example/lumera/internal/services"
)

type userStore struct {
	db *gorm.DB
}

func (s *userStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *userStore) ActiveStaff(ctx context.Context) ([]models.User, error) {
	var staff []models.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleStaff, true).
		Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

type walletLedger struct {
	db *gorm.DB
}

// Adjust moves a balance under a row lock so concurrent debits serialize. A
// debit that would push the balance below zero is rejected whole.
func (s *walletLedger) Adjust(ctx context.Context, userID uuid.UUID, delta float64) (float64, error) {
	var newBalance float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			return mapErr(err)
		}

		newBalance = user.Balance + delta
		if newBalance < 0 {
			return services.ErrInsufficientFunds
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("balance", newBalance).Error
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *walletLedger) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Select("balance").
		First(&user, "id = ?", userID).Error; err != nil {
		return 0, mapErr(err)
	}
	return user.Balance, nil
}
