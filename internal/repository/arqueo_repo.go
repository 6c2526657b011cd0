package repository

import (
	"context"
	"errors"
	"time"

	"arqueo-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArqueoRepository struct {
	db *gorm.DB
}

func NewArqueoRepository(db *gorm.DB) *ArqueoRepository {
	return &ArqueoRepository{db: db}
}

// GetRecord returns the arqueo with its lines, or nil when none exists.
func (r *ArqueoRepository) GetRecord(ctx context.Context, sellerID int64, date string) (*models.Arqueo, error) {
	var rec models.Arqueo
	err := r.db.WithContext(ctx).
		Preload("CreditLines").
		Preload("ExpenseLines").
		Where("seller_id = ? AND business_date = ?", sellerID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertRecord inserts rec or, when (seller_id, date) already exists,
// overwrites the stored figures in place. The stored row is returned with
// its identity; lines are not touched.
func (r *ArqueoRepository) UpsertRecord(ctx context.Context, rec *models.Arqueo) (*models.Arqueo, error) {
	row := *rec
	row.CreditLines = nil
	row.ExpenseLines = nil
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	// excluded.updated_at must carry the time of this write
	row.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "seller_id"}, {Name: "business_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"weekday",
				"gross_sales",
				"discounts",
				"cash_handed_in",
				"digital_handed_in",
				"net_sales",
				"total_collected",
				"total_new_credit_sales",
				"total_expenses",
				"expected_cash",
				"variance",
				"updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored models.Arqueo
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND business_date = ?", rec.SellerID, rec.Date).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// ReplaceCreditLines deletes every credit line of the arqueo and inserts
// lines in one transaction.
func (r *ArqueoRepository) ReplaceCreditLines(ctx context.Context, arqueoID uuid.UUID, lines []models.CreditLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("arqueo_id = ?", arqueoID).Delete(&models.CreditLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].ID = uuid.New()
			lines[i].ArqueoID = arqueoID
		}
		return tx.Create(&lines).Error
	})
}

func (r *ArqueoRepository) ReplaceExpenseLines(ctx context.Context, arqueoID uuid.UUID, lines []models.ExpenseLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("arqueo_id = ?", arqueoID).Delete(&models.ExpenseLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].ID = uuid.New()
			lines[i].ArqueoID = arqueoID
		}
		return tx.Create(&lines).Error
	})
}

// GetLedgerBalance returns the client's outstanding balance, zero when the
// client is unknown.
func (r *ArqueoRepository) GetLedgerBalance(ctx context.Context, clientCode string) (decimal.Decimal, error) {
	var client models.Client
	err := r.db.WithContext(ctx).First(&client, "code = ?", clientCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return client.Balance, nil
}

// UpsertLedgerBalance sets the client's balance. displayName is only used
// when the client row is created.
func (r *ArqueoRepository) UpsertLedgerBalance(ctx context.Context, clientCode, displayName string, balance decimal.Decimal) error {
	client := &models.Client{
		Code:    clientCode,
		Name:    displayName,
		Balance: balance,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
		}).
		Create(client).Error
}

func (r *ArqueoRepository) LogSubmission(ctx context.Context, entry *models.SubmissionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListBySeller returns the seller's arqueos between two date keys, newest
// first.
func (r *ArqueoRepository) ListBySeller(ctx context.Context, sellerID int64, from, to string) ([]models.Arqueo, error) {
	var recs []models.Arqueo
	query := r.db.WithContext(ctx).Where("seller_id = ?", sellerID)
	if from != "" {
		query = query.Where("business_date >= ?", from)
	}
	if to != "" {
		query = query.Where("business_date <= ?", to)
	}
	err := query.Order("business_date DESC").Find(&recs).Error
	return recs, err
}
