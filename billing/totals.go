package billing

import "github.com/shopspring/decimal"

// DefaultVATRate is the standard VAT rate applied when none is configured.
var DefaultVATRate = decimal.RequireFromString("0.21")

// Totals computes net, VAT and gross for a set of lines. Each result is
// rounded half-up to two decimal places exactly once, so re-deriving totals
// for the same lines can never drift by a cent.
func Totals(lines []LineDraft, vatRate decimal.Decimal) (net, vat, gross decimal.Decimal) {
	for _, line := range lines {
		net = net.Add(line.Total)
	}
	net = net.Round(2)
	vat = net.Mul(vatRate).Round(2)
	gross = net.Add(vat).Round(2)
	return net, vat, gross
}
