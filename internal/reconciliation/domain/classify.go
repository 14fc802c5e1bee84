package reconciliation

import (
	"math"

	"github.com/shopspring/decimal"
)

// Status is the reconciliation outcome of a line item.
type Status string

const (
	StatusAboveExpected Status = "ABOVE_EXPECTED"
	StatusNeedsReview   Status = "NEEDS_REVIEW"
	StatusPartial       Status = "PARTIAL"
	StatusPending       Status = "PENDING"
	StatusReleased      Status = "RELEASED"
)

// Statuses lists every status in table order.
var Statuses = []Status{
	StatusAboveExpected,
	StatusNeedsReview,
	StatusPartial,
	StatusPending,
	StatusReleased,
}

// amountPlaces is the currency precision used for comparisons and display.
const amountPlaces = 2

// Tolerance is the comparison tolerance in currency units.
var Tolerance = decimal.New(1, -amountPlaces)

// Row is a classified expected record. It is a view and never persisted.
type Row struct {
	ExpectedRecord
	Credited float64 `json:"credited"`
	Delta    float64 `json:"delta"`
	Status   Status  `json:"status"`
}

// Classify joins an expected record with the credited total of its order.
// present=false means the order has no releases and is treated as zero credit.
func Classify(expected ExpectedRecord, creditedTotal float64, present bool) Row {
	credited := 0.0
	if present {
		credited = creditedTotal
	}
	return Row{
		ExpectedRecord: expected,
		Credited:       credited,
		Delta:          credited - expected.Expected,
		Status:         ClassifyAmounts(expected.Expected, credited),
	}
}

// ClassifyAmounts decides the status for an expected/credited pair.
// Both values are rounded to cents first; rules are evaluated in order and the
// first match wins, so the function is total.
func ClassifyAmounts(expected, credited float64) Status {
	if !isFinite(credited) || !isFinite(expected) {
		if credited == 0 {
			return StatusPending
		}
		return StatusNeedsReview
	}
	exp := RoundAmount(expected)
	cred := RoundAmount(credited)

	switch {
	case cred.IsZero():
		return StatusPending
	case cred.Sub(exp).Abs().LessThanOrEqual(Tolerance):
		return StatusReleased
	case cred.IsPositive() && cred.LessThan(exp.Sub(Tolerance)):
		return StatusPartial
	case cred.GreaterThan(exp.Add(Tolerance)):
		return StatusAboveExpected
	default:
		return StatusNeedsReview
	}
}

// RoundAmount rounds a currency value to cents, half away from zero.
func RoundAmount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(amountPlaces)
}

// FormatAmount renders a currency value with two decimals.
func FormatAmount(v float64) string {
	return RoundAmount(v).StringFixed(amountPlaces)
}
