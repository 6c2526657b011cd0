package repository

import (
	"context"

	"arqueo-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// UpsertRoutes writes routes in one statement; an existing
// (seller, weekday, client) row gets the new client name.
func (r *RouteRepository) UpsertRoutes(ctx context.Context, routes []models.Route) (int64, error) {
	if len(routes) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "seller_id"},
				{Name: "weekday"},
				{Name: "client_code"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"client_name"}),
		}).
		Create(&routes)
	return result.RowsAffected, result.Error
}

func (r *RouteRepository) ListByDay(ctx context.Context, sellerID int64, weekday string) ([]models.Route, error) {
	var routes []models.Route
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND weekday = ?", sellerID, weekday).
		Order("client_code ASC").
		Find(&routes).Error
	return routes, err
}
