package reconciliation

import "sort"

// ReleaseRecord is a credited payout line imported from a statement.
// CreditedAmount may be negative for refunds and charge-backs.
type ReleaseRecord struct {
	ShopID         int64   `json:"shop_id"`
	OrderID        string  `json:"order_id"`
	CreditedAmount float64 `json:"credited_amount"`
	Batch          string  `json:"batch,omitempty"`
	ReleaseDate    string  `json:"release_date,omitempty"`
}

// AggregateReleases sums credited amounts per order id for one shop.
// Orders without releases are absent from the result; callers treat absence as zero.
// Amounts are summed in sorted order so the float total is independent of input order.
func AggregateReleases(releases []ReleaseRecord, shopID int64) map[string]float64 {
	grouped := make(map[string][]float64)
	for _, release := range releases {
		if release.ShopID != shopID {
			continue
		}
		grouped[release.OrderID] = append(grouped[release.OrderID], release.CreditedAmount)
	}

	totals := make(map[string]float64, len(grouped))
	for orderID, amounts := range grouped {
		sort.Float64s(amounts)
		var total float64
		for _, amount := range amounts {
			total += amount
		}
		totals[orderID] = total
	}
	return totals
}
