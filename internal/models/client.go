package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is the outstanding-balance ledger entry of a customer.
type Client struct {
	Code      string          `gorm:"primaryKey;size:32" json:"code"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;index" json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Seller struct {
	TelegramID int64     `gorm:"primaryKey;autoIncrement:false" json:"telegram_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}
