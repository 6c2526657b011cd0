package reconciliation

import (
	"strings"

	"arqueo-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Session is the state of one open arqueo form. It is created by Open and
// passed to every operation; nothing survives a date change.
type Session struct {
	SellerID int64
	Date     string
	State    State
	Record   models.Arqueo
}

// Figures are the top-level amounts typed into the form.
type Figures struct {
	GrossSales      decimal.Decimal
	Discounts       decimal.Decimal
	CashHandedIn    decimal.Decimal
	DigitalHandedIn decimal.Decimal
}

func (s *Session) ensureMutable() error {
	if s == nil || !s.State.Mutable() {
		return ErrLockedRecord
	}
	return nil
}

// Totals recomputes the derived figures for the current record.
func (s *Session) Totals() Totals {
	return ComputeTotals(s.Record)
}

func (s *Session) SetFigures(f Figures) error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	for _, v := range []decimal.Decimal{f.GrossSales, f.Discounts, f.CashHandedIn, f.DigitalHandedIn} {
		if v.IsNegative() {
			return invalid("amounts cannot be negative")
		}
	}
	s.Record.GrossSales = f.GrossSales
	s.Record.Discounts = f.Discounts
	s.Record.CashHandedIn = f.CashHandedIn
	s.Record.DigitalHandedIn = f.DigitalHandedIn
	return nil
}

// UpdateCreditLine sets the collected and new credit sales amounts of the
// line for code. The prior balance snapshot is left untouched.
func (s *Session) UpdateCreditLine(code string, collected, newCreditSales decimal.Decimal) error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	if collected.IsNegative() || newCreditSales.IsNegative() {
		return invalid("amounts cannot be negative")
	}
	i := indexOfClient(s.Record.CreditLines, code)
	if i < 0 {
		return invalid("unknown client code " + code)
	}
	s.Record.CreditLines[i].Collected = collected
	s.Record.CreditLines[i].NewCreditSales = newCreditSales
	return nil
}

func (s *Session) RemoveCreditLine(code string) error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	i := indexOfClient(s.Record.CreditLines, code)
	if i < 0 {
		return invalid("unknown client code " + code)
	}
	s.Record.CreditLines = append(s.Record.CreditLines[:i:i], s.Record.CreditLines[i+1:]...)
	return nil
}

// AddExpense appends a free-form expense line.
func (s *Session) AddExpense(label string, amount decimal.Decimal) error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	if amount.IsNegative() {
		return invalid("amounts cannot be negative")
	}
	s.Record.ExpenseLines = append(s.Record.ExpenseLines, models.ExpenseLine{
		Label:  strings.TrimSpace(label),
		Amount: amount,
	})
	return nil
}

// SetExpense overwrites the amount of the first line labelled label, adding
// the line when missing.
func (s *Session) SetExpense(label string, amount decimal.Decimal) error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	if amount.IsNegative() {
		return invalid("amounts cannot be negative")
	}
	label = strings.TrimSpace(label)
	for i := range s.Record.ExpenseLines {
		if s.Record.ExpenseLines[i].Label == label {
			s.Record.ExpenseLines[i].Amount = amount
			return nil
		}
	}
	s.Record.ExpenseLines = append(s.Record.ExpenseLines, models.ExpenseLine{Label: label, Amount: amount})
	return nil
}

// NormalizeClientCode trims and upper-cases a client code.
func NormalizeClientCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// indexOfClient finds the non-empty line whose code matches, ignoring case.
func indexOfClient(lines []models.CreditLine, code string) int {
	code = NormalizeClientCode(code)
	if code == "" {
		return -1
	}
	for i, l := range lines {
		if NormalizeClientCode(l.ClientCode) == code {
			return i
		}
	}
	return -1
}
