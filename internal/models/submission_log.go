package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubmissionLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ArqueoID  uuid.UUID `gorm:"type:uuid;index"`
	SellerID  int64     `gorm:"index"`
	Date      string    `gorm:"column:business_date;type:varchar(10)"`
	Action    string
	Details   datatypes.JSON
	CreatedAt time.Time
}
