package repository

import (
	"context"

	"arqueo-backend/internal/models"

	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// ListDebtors returns clients with an outstanding balance.
func (r *ClientRepository) ListDebtors(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.WithContext(ctx).
		Where("balance > ?", 0).
		Order("code ASC").
		Find(&clients).Error
	return clients, err
}

// GetOrCreateSeller registers the seller on first contact.
func (r *ClientRepository) GetOrCreateSeller(ctx context.Context, telegramID int64, name string) (*models.Seller, error) {
	seller := models.Seller{TelegramID: telegramID, Name: name}
	err := r.db.WithContext(ctx).
		Where(models.Seller{TelegramID: telegramID}).
		Attrs(models.Seller{Name: name}).
		FirstOrCreate(&seller).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}
