package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Route assigns a client to a seller's weekday.
type Route struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID   int64     `gorm:"not null;uniqueIndex:idx_route_seller_day_client" json:"seller_id"`
	Weekday    string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_route_seller_day_client" json:"weekday"`
	ClientCode string    `gorm:"size:32;not null;uniqueIndex:idx_route_seller_day_client" json:"client_code"`
	ClientName string    `json:"client_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// VisitLog stores the visit checklist of one seller for one day.
type VisitLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID     int64          `gorm:"not null;uniqueIndex:idx_visit_seller_date" json:"seller_id"`
	Date         string         `gorm:"column:business_date;type:varchar(10);not null;uniqueIndex:idx_visit_seller_date" json:"date"`
	ScheduledDay string         `gorm:"type:varchar(3)" json:"scheduled_day"`
	ActualDay    string         `gorm:"type:varchar(3)" json:"actual_day"`
	Visits       datatypes.JSON `json:"visits"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type Visit struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Visited bool   `json:"visited"`
}
