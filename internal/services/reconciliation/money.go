package reconciliation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney reads a locale formatted amount such as "1.234,56". Dots are
// thousands separators, the comma is the decimal separator and a blank
// string is zero.
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "Bs")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ".", "")
	if strings.Count(s, ",") > 1 {
		return decimal.Zero, invalid("malformed amount " + raw)
	}
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("malformed amount " + raw)
	}
	return d, nil
}

// FormatMoney renders d with two decimals, "." grouping and "," decimals.
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatVariance prefixes surpluses with "+" and shortages with "-". A
// balanced variance is printed without a sign.
func FormatVariance(v decimal.Decimal) string {
	abs := FormatMoney(v.Abs())
	switch Classify(v) {
	case Surplus:
		return "+" + abs
	case Shortage:
		return "-" + abs
	default:
		return abs
	}
}
