package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Arqueo is the daily cash reconciliation of one seller. At most one row
// exists per (seller_id, date).
type Arqueo struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID        int64           `gorm:"not null;uniqueIndex:idx_arqueo_seller_date" json:"seller_id"`
	Date            string          `gorm:"column:business_date;type:varchar(10);not null;uniqueIndex:idx_arqueo_seller_date" json:"date"`
	Weekday         string          `gorm:"type:varchar(12)" json:"weekday"`
	GrossSales      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"gross_sales"`
	Discounts       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discounts"`
	CashHandedIn    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cash_handed_in"`
	DigitalHandedIn decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"digital_handed_in"`

	// Totals snapshot written on submit.
	NetSales            decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"net_sales"`
	TotalCollected      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_collected"`
	TotalNewCreditSales decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_new_credit_sales"`
	TotalExpenses       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_expenses"`
	ExpectedCash        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"expected_cash"`
	Variance            decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"variance"`

	CreditLines  []CreditLine  `gorm:"foreignKey:ArqueoID" json:"credit_lines"`
	ExpenseLines []ExpenseLine `gorm:"foreignKey:ArqueoID" json:"expense_lines"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreditLine is one client's credit movement inside an arqueo.
type CreditLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ArqueoID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"arqueo_id"`
	ClientCode     string          `gorm:"size:32" json:"client_code"`
	PriorBalance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"prior_balance"`
	Collected      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"collected"`
	NewCreditSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"new_credit_sales"`
	NewBalance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"new_balance"`
}

// Balance returns prior - collected + new credit sales.
func (l CreditLine) Balance() decimal.Decimal {
	return l.PriorBalance.Sub(l.Collected).Add(l.NewCreditSales)
}

// IsBlank reports whether the line carries nothing worth persisting.
func (l CreditLine) IsBlank() bool {
	return strings.TrimSpace(l.ClientCode) == "" && l.Collected.IsZero() && l.NewCreditSales.IsZero()
}

type ExpenseLine struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ArqueoID uuid.UUID       `gorm:"type:uuid;index;not null" json:"arqueo_id"`
	Label    string          `gorm:"size:120" json:"label"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
}

// Fixed expense labels always present in the form.
const (
	ExpenseFuel = "Combustible"
	ExpenseToll = "Peaje"
)
