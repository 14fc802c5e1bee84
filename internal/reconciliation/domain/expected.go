package reconciliation

import "time"

// OrderLineItem is a normalized marketplace order item.
// OrderID is only unique within a shop.
type OrderLineItem struct {
	ShopID      int64     `json:"shop_id"`
	OrderID     string    `json:"order_id"`
	ItemName    string    `json:"item_name"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	CreatedTime time.Time `json:"created_time"`
}

// ExpectedRecord is the expected net payout of a single line item.
type ExpectedRecord struct {
	ShopID      int64     `json:"shop_id"`
	OrderID     string    `json:"order_id"`
	ItemName    string    `json:"item_name"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	CreatedTime time.Time `json:"created_time"`

	Gross      float64 `json:"gross"`
	Commission float64 `json:"commission"`
	FixedFee   float64 `json:"fixed_fee"`
	Expected   float64 `json:"expected"`
}

// Compute derives the expected record for an item under a policy.
// No rounding is applied; Expected may be negative when fees exceed gross.
func Compute(item OrderLineItem, policy Policy) (ExpectedRecord, error) {
	if item.Quantity < 1 {
		return ExpectedRecord{}, &InvalidInputError{Field: "quantity", Value: item.Quantity, Reason: "must be >= 1"}
	}
	if !isFinite(item.UnitPrice) {
		return ExpectedRecord{}, &InvalidInputError{Field: "unit_price", Value: item.UnitPrice, Reason: "must be finite"}
	}
	if item.UnitPrice < 0 {
		return ExpectedRecord{}, &InvalidInputError{Field: "unit_price", Value: item.UnitPrice, Reason: "must be >= 0"}
	}
	if !isFinite(policy.CommissionPercent) {
		return ExpectedRecord{}, &InvalidInputError{Field: "commission_percent", Value: policy.CommissionPercent, Reason: "must be finite"}
	}
	if !isFinite(policy.FixedFeePerUnit) {
		return ExpectedRecord{}, &InvalidInputError{Field: "fixed_fee_per_unit", Value: policy.FixedFeePerUnit, Reason: "must be finite"}
	}

	qty := float64(item.Quantity)
	gross := item.UnitPrice * qty
	commission := gross * policy.CommissionPercent / 100
	fixedFee := qty * policy.FixedFeePerUnit

	expected := gross - commission - fixedFee
	if !isFinite(gross) || !isFinite(expected) {
		return ExpectedRecord{}, &InvalidInputError{Field: "gross", Value: gross, Reason: "overflows"}
	}

	return ExpectedRecord{
		ShopID:      item.ShopID,
		OrderID:     item.OrderID,
		ItemName:    item.ItemName,
		UnitPrice:   item.UnitPrice,
		Quantity:    item.Quantity,
		CreatedTime: item.CreatedTime,
		Gross:       gross,
		Commission:  commission,
		FixedFee:    fixedFee,
		Expected:    expected,
	}, nil
}

// ComputeAll computes every item, stopping at the first invalid one.
func ComputeAll(items []OrderLineItem, policy Policy) ([]ExpectedRecord, error) {
	records := make([]ExpectedRecord, 0, len(items))
	for _, item := range items {
		record, err := Compute(item, policy)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
