package reconciliation

import (
	"arqueo-backend/internal/models"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	Balanced Outcome = "balanced"
	Surplus  Outcome = "surplus"
	Shortage Outcome = "shortage"
)

// VarianceTolerance is the largest absolute variance still reported as
// balanced.
var VarianceTolerance = decimal.New(1, -2)

// Totals are the figures derived from an arqueo's entered values.
type Totals struct {
	NetSales            decimal.Decimal `json:"net_sales"`
	TotalPriorBalance   decimal.Decimal `json:"total_prior_balance"`
	TotalCollected      decimal.Decimal `json:"total_collected"`
	TotalNewCreditSales decimal.Decimal `json:"total_new_credit_sales"`
	TotalExpenses       decimal.Decimal `json:"total_expenses"`
	ExpectedCash        decimal.Decimal `json:"expected_cash"`
	HandedIn            decimal.Decimal `json:"handed_in"`
	Variance            decimal.Decimal `json:"variance"`
	Outcome             Outcome         `json:"outcome"`
}

// ComputeTotals projects rec's current field values into Totals. It has no
// side effects and does not round.
func ComputeTotals(rec models.Arqueo) Totals {
	var t Totals
	t.NetSales = rec.GrossSales.Sub(rec.Discounts)

	for _, l := range rec.CreditLines {
		t.TotalPriorBalance = t.TotalPriorBalance.Add(l.PriorBalance)
		t.TotalCollected = t.TotalCollected.Add(l.Collected)
		t.TotalNewCreditSales = t.TotalNewCreditSales.Add(l.NewCreditSales)
	}
	for _, e := range rec.ExpenseLines {
		t.TotalExpenses = t.TotalExpenses.Add(e.Amount)
	}

	t.ExpectedCash = t.NetSales.
		Add(t.TotalCollected).
		Sub(t.TotalNewCreditSales).
		Sub(t.TotalExpenses)
	t.HandedIn = rec.CashHandedIn.Add(rec.DigitalHandedIn)
	t.Variance = t.HandedIn.Sub(t.ExpectedCash)
	t.Outcome = Classify(t.Variance)
	return t
}

// Classify maps a variance to its outcome using VarianceTolerance.
func Classify(variance decimal.Decimal) Outcome {
	switch {
	case variance.GreaterThan(VarianceTolerance):
		return Surplus
	case variance.LessThan(VarianceTolerance.Neg()):
		return Shortage
	default:
		return Balanced
	}
}

// Display is Totals rendered for the host shell.
type Display struct {
	NetSales            string  `json:"net_sales"`
	TotalPriorBalance   string  `json:"total_prior_balance"`
	TotalCollected      string  `json:"total_collected"`
	TotalNewCreditSales string  `json:"total_new_credit_sales"`
	TotalExpenses       string  `json:"total_expenses"`
	ExpectedCash        string  `json:"expected_cash"`
	HandedIn            string  `json:"handed_in"`
	Variance            string  `json:"variance"`
	Outcome             Outcome `json:"outcome"`
}

func (t Totals) Display() Display {
	return Display{
		NetSales:            FormatMoney(t.NetSales),
		TotalPriorBalance:   FormatMoney(t.TotalPriorBalance),
		TotalCollected:      FormatMoney(t.TotalCollected),
		TotalNewCreditSales: FormatMoney(t.TotalNewCreditSales),
		TotalExpenses:       FormatMoney(t.TotalExpenses),
		ExpectedCash:        FormatMoney(t.ExpectedCash),
		HandedIn:            FormatMoney(t.HandedIn),
		Variance:            FormatVariance(t.Variance),
		Outcome:             t.Outcome,
	}
}
