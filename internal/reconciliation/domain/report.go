package reconciliation

import (
	"sort"
	"time"
)

// Summary holds the report KPIs.
type Summary struct {
	Orders       int            `json:"orders"`
	Items        int            `json:"items"`
	Gross        float64        `json:"gross"`
	Expected     float64        `json:"expected"`
	Credited     float64        `json:"credited"`
	Delta        float64        `json:"delta"`
	StatusCounts map[Status]int `json:"status_counts"`
}

// Report is the reconciliation view of one shop over a period.
type Report struct {
	ShopID  int64     `json:"shop_id"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Summary Summary   `json:"summary"`
	Rows    []Row     `json:"rows"`
}

// Reconcile classifies every expected record of a shop against its releases and
// returns the sorted table with its summary.
func Reconcile(expected []ExpectedRecord, releases []ReleaseRecord, shopID int64) Report {
	credited := AggregateReleases(releases, shopID)
	rows := make([]Row, 0, len(expected))
	for _, record := range expected {
		if record.ShopID != shopID {
			continue
		}
		total, ok := credited[record.OrderID]
		rows = append(rows, Classify(record, total, ok))
	}
	table := SortedTable(rows)
	return Report{
		ShopID:  shopID,
		Summary: Summarize(table),
		Rows:    table,
	}
}

// Summarize computes totals over the rows. Credited is summed per row, so an
// order with several items contributes its credited total once per item.
func Summarize(rows []Row) Summary {
	sorted := SortedTable(rows)
	summary := Summary{
		Items:        len(sorted),
		StatusCounts: make(map[Status]int, len(Statuses)),
	}
	orders := make(map[string]struct{})
	for _, row := range sorted {
		orders[row.OrderID] = struct{}{}
		summary.Gross += row.Gross
		summary.Expected += row.Expected
		summary.Credited += row.Credited
		summary.Delta += row.Delta
		summary.StatusCounts[row.Status]++
	}
	summary.Orders = len(orders)
	return summary
}

// SortedTable returns a copy of rows ordered by status (lexical), then order id.
// Remaining fields break ties so the order is total for any input permutation.
func SortedTable(rows []Row) []Row {
	table := make([]Row, len(rows))
	copy(table, rows)
	sort.SliceStable(table, func(i, j int) bool {
		return rowLess(table[i], table[j])
	})
	return table
}

func rowLess(a, b Row) bool {
	if a.Status != b.Status {
		return a.Status < b.Status
	}
	if a.OrderID != b.OrderID {
		return a.OrderID < b.OrderID
	}
	if a.ItemName != b.ItemName {
		return a.ItemName < b.ItemName
	}
	if a.UnitPrice != b.UnitPrice {
		return a.UnitPrice < b.UnitPrice
	}
	if a.Quantity != b.Quantity {
		return a.Quantity < b.Quantity
	}
	if !a.CreatedTime.Equal(b.CreatedTime) {
		return a.CreatedTime.Before(b.CreatedTime)
	}
	if a.Expected != b.Expected {
		return a.Expected < b.Expected
	}
	return a.Credited < b.Credited
}
