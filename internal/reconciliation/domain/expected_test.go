package reconciliation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		item   OrderLineItem
		policy Policy
		want   ExpectedRecord
	}{
		{
			name:   "default policy two units",
			item:   OrderLineItem{ShopID: 1, OrderID: "A1", ItemName: "mug", UnitPrice: 50, Quantity: 2, CreatedTime: created},
			policy: Policy{CommissionPercent: 20, FixedFeePerUnit: 4},
			want: ExpectedRecord{
				ShopID: 1, OrderID: "A1", ItemName: "mug", UnitPrice: 50, Quantity: 2, CreatedTime: created,
				Gross: 100, Commission: 20, FixedFee: 8, Expected: 72,
			},
		},
		{
			name:   "zero price yields negative expected",
			item:   OrderLineItem{ShopID: 1, OrderID: "A2", UnitPrice: 0, Quantity: 3},
			policy: Policy{CommissionPercent: 20, FixedFeePerUnit: 4},
			want:   ExpectedRecord{ShopID: 1, OrderID: "A2", Quantity: 3, Gross: 0, Commission: 0, FixedFee: 12, Expected: -12},
		},
		{
			name:   "commission above one hundred percent is not rejected",
			item:   OrderLineItem{ShopID: 1, OrderID: "A3", UnitPrice: 10, Quantity: 1},
			policy: Policy{CommissionPercent: 150, FixedFeePerUnit: 0},
			want:   ExpectedRecord{ShopID: 1, OrderID: "A3", UnitPrice: 10, Quantity: 1, Gross: 10, Commission: 15, FixedFee: 0, Expected: -5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.item, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Gross-got.Commission-got.FixedFee, got.Expected)
		})
	}
}

func TestCompute_MatchesClosedForm(t *testing.T) {
	prices := []float64{0, 0.01, 9.99, 19.9, 123.45, 1e6}
	quantities := []int{1, 2, 3, 7, 100}
	policies := []Policy{{0, 0}, {12.5, 0.5}, {20, 4}, {33.3, 1.99}, {100, 0}}

	for _, price := range prices {
		for _, qty := range quantities {
			for _, policy := range policies {
				got, err := Compute(OrderLineItem{UnitPrice: price, Quantity: qty}, policy)
				require.NoError(t, err)
				want := price*float64(qty) - (price*float64(qty))*policy.CommissionPercent/100 - float64(qty)*policy.FixedFeePerUnit
				assert.Equal(t, want, got.Expected, "price=%v qty=%v policy=%+v", price, qty, policy)
			}
		}
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		item   OrderLineItem
		policy Policy
		field  string
	}{
		{name: "zero quantity", item: OrderLineItem{UnitPrice: 1, Quantity: 0}, field: "quantity"},
		{name: "negative quantity", item: OrderLineItem{UnitPrice: 1, Quantity: -1}, field: "quantity"},
		{name: "negative price", item: OrderLineItem{UnitPrice: -0.01, Quantity: 1}, field: "unit_price"},
		{name: "nan price", item: OrderLineItem{UnitPrice: math.NaN(), Quantity: 1}, field: "unit_price"},
		{name: "inf price", item: OrderLineItem{UnitPrice: math.Inf(1), Quantity: 1}, field: "unit_price"},
		{name: "nan commission", item: OrderLineItem{UnitPrice: 1, Quantity: 1}, policy: Policy{CommissionPercent: math.NaN()}, field: "commission_percent"},
		{name: "inf fee", item: OrderLineItem{UnitPrice: 1, Quantity: 1}, policy: Policy{FixedFeePerUnit: math.Inf(-1)}, field: "fixed_fee_per_unit"},
		{name: "overflowing gross", item: OrderLineItem{UnitPrice: 1e308, Quantity: 2}, policy: DefaultPolicy(), field: "gross"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.item, tt.policy)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var inputErr *InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestComputeAll_StopsAtFirstInvalidItem(t *testing.T) {
	items := []OrderLineItem{
		{OrderID: "ok", UnitPrice: 10, Quantity: 1},
		{OrderID: "bad", UnitPrice: 10, Quantity: 0},
	}
	records, err := ComputeAll(items, DefaultPolicy())
	assert.Nil(t, records)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.NoError(t, Policy{CommissionPercent: 250, FixedFeePerUnit: 0}.Validate())
	assert.ErrorIs(t, Policy{CommissionPercent: -1}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{FixedFeePerUnit: -0.5}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{CommissionPercent: math.NaN()}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, Policy{FixedFeePerUnit: math.Inf(1)}.Validate(), ErrInvalidPolicy)
}
