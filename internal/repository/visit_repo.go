package repository

import (
	"context"
	"errors"

	"arqueo-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Upsert stores the checklist, replacing the one saved earlier that day.
func (r *VisitRepository) Upsert(ctx context.Context, log *models.VisitLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}, {Name: "business_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"scheduled_day", "actual_day", "visits", "updated_at"}),
		}).
		Create(log).Error
}

func (r *VisitRepository) Get(ctx context.Context, sellerID int64, date string) (*models.VisitLog, error) {
	var log models.VisitLog
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND business_date = ?", sellerID, date).
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}
