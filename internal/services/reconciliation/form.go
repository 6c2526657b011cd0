package reconciliation

import (
	"context"
	"fmt"
	"strings"

	"arqueo-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Form is the raw, locale formatted input posted by the host shell.
type Form struct {
	GrossSales      string           `json:"gross_sales"`
	Discounts       string           `json:"discounts"`
	CashHandedIn    string           `json:"cash_handed_in"`
	DigitalHandedIn string           `json:"digital_handed_in"`
	CreditLines     []CreditLineForm `json:"credit_lines"`
	Expenses        []ExpenseForm    `json:"expenses"`
}

type CreditLineForm struct {
	ClientCode     string `json:"client_code"`
	PriorBalance   string `json:"prior_balance"`
	Collected      string `json:"collected"`
	NewCreditSales string `json:"new_credit_sales"`
}

type ExpenseForm struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Figures parses the top-level amounts.
func (f Form) Figures() (Figures, error) {
	var out Figures
	var err error
	if out.GrossSales, err = ParseMoney(f.GrossSales); err != nil {
		return out, err
	}
	if out.Discounts, err = ParseMoney(f.Discounts); err != nil {
		return out, err
	}
	if out.CashHandedIn, err = ParseMoney(f.CashHandedIn); err != nil {
		return out, err
	}
	if out.DigitalHandedIn, err = ParseMoney(f.DigitalHandedIn); err != nil {
		return out, err
	}
	return out, nil
}

// Record parses the whole form into an unsaved arqueo.
func (f Form) Record() (models.Arqueo, error) {
	var rec models.Arqueo
	figs, err := f.Figures()
	if err != nil {
		return rec, err
	}
	rec.GrossSales = figs.GrossSales
	rec.Discounts = figs.Discounts
	rec.CashHandedIn = figs.CashHandedIn
	rec.DigitalHandedIn = figs.DigitalHandedIn

	for i, cl := range f.CreditLines {
		line := models.CreditLine{ClientCode: NormalizeClientCode(cl.ClientCode)}
		if line.PriorBalance, err = ParseMoney(cl.PriorBalance); err != nil {
			return rec, fmt.Errorf("credit line %d: %w", i+1, err)
		}
		if line.Collected, err = ParseMoney(cl.Collected); err != nil {
			return rec, fmt.Errorf("credit line %d: %w", i+1, err)
		}
		if line.NewCreditSales, err = ParseMoney(cl.NewCreditSales); err != nil {
			return rec, fmt.Errorf("credit line %d: %w", i+1, err)
		}
		rec.CreditLines = append(rec.CreditLines, line)
	}
	for i, ef := range f.Expenses {
		amount, err := ParseMoney(ef.Amount)
		if err != nil {
			return rec, fmt.Errorf("expense %d: %w", i+1, err)
		}
		rec.ExpenseLines = append(rec.ExpenseLines, models.ExpenseLine{
			Label:  strings.TrimSpace(ef.Label),
			Amount: amount,
		})
	}
	return rec, nil
}

// ApplyForm replaces the session's figures, credit lines and expenses with
// the form contents. The posted prior balances are ignored: a line already in
// the session keeps its snapshot, and a new client is snapshotted from the
// ledger as AddCreditLine does.
func (s *ReconciliationService) ApplyForm(ctx context.Context, sess *Session, f Form) error {
	if err := sess.ensureMutable(); err != nil {
		return err
	}
	rec, err := f.Record()
	if err != nil {
		return err
	}
	for _, l := range rec.CreditLines {
		if l.PriorBalance.IsNegative() {
			return invalid("prior balance cannot be negative")
		}
	}
	if err := validateAmounts(rec); err != nil {
		return err
	}
	if err := checkDuplicates(rec.CreditLines); err != nil {
		return err
	}

	if err := sess.SetFigures(Figures{
		GrossSales:      rec.GrossSales,
		Discounts:       rec.Discounts,
		CashHandedIn:    rec.CashHandedIn,
		DigitalHandedIn: rec.DigitalHandedIn,
	}); err != nil {
		return err
	}

	posted := make(map[string]struct{}, len(rec.CreditLines))
	for _, l := range rec.CreditLines {
		if l.ClientCode != "" {
			posted[l.ClientCode] = struct{}{}
		}
	}
	var stale []string
	coded := sess.Record.CreditLines[:0:0]
	for _, l := range sess.Record.CreditLines {
		code := NormalizeClientCode(l.ClientCode)
		if code == "" {
			continue
		}
		coded = append(coded, l)
		if _, ok := posted[code]; !ok {
			stale = append(stale, code)
		}
	}
	sess.Record.CreditLines = coded
	for _, code := range stale {
		if err := sess.RemoveCreditLine(code); err != nil {
			return err
		}
	}

	for _, l := range rec.CreditLines {
		if l.ClientCode == "" {
			l.PriorBalance = decimal.Zero
			sess.Record.CreditLines = append(sess.Record.CreditLines, l)
			continue
		}
		if indexOfClient(sess.Record.CreditLines, l.ClientCode) < 0 {
			if _, err := s.AddCreditLine(ctx, sess, l.ClientCode); err != nil {
				return err
			}
		}
		if err := sess.UpdateCreditLine(l.ClientCode, l.Collected, l.NewCreditSales); err != nil {
			return err
		}
	}

	sess.Record.ExpenseLines = nil
	for _, e := range rec.ExpenseLines {
		if e.Label == models.ExpenseFuel || e.Label == models.ExpenseToll {
			err = sess.SetExpense(e.Label, e.Amount)
		} else {
			err = sess.AddExpense(e.Label, e.Amount)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
