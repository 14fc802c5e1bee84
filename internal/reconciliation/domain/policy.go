package reconciliation

import (
	"fmt"
	"math"
)

const (
	// DefaultCommissionPercent is applied to shops registered without a policy.
	DefaultCommissionPercent = 20.0
	// DefaultFixedFeePerUnit is applied to shops registered without a policy.
	DefaultFixedFeePerUnit = 4.0
)

// Policy is the per-shop commission and fee schedule.
// It is copied into every computation; editing a shop's policy never touches
// records computed earlier.
type Policy struct {
	CommissionPercent float64 `json:"commission_percent"`
	FixedFeePerUnit   float64 `json:"fixed_fee_per_unit"`
}

// DefaultPolicy returns the marketplace default policy.
func DefaultPolicy() Policy {
	return Policy{CommissionPercent: DefaultCommissionPercent, FixedFeePerUnit: DefaultFixedFeePerUnit}
}

// Validate checks the policy at the system boundary.
// Commission above 100% is accepted and yields a negative expected amount.
func (p Policy) Validate() error {
	if !isFinite(p.CommissionPercent) || p.CommissionPercent < 0 {
		return fmt.Errorf("%w: commission_percent must be finite and >= 0", ErrInvalidPolicy)
	}
	if !isFinite(p.FixedFeePerUnit) || p.FixedFeePerUnit < 0 {
		return fmt.Errorf("%w: fixed_fee_per_unit must be finite and >= 0", ErrInvalidPolicy)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
