package reconciliation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches every InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("reconciliation: invalid input")
	// ErrInvalidPolicy is returned when a policy fails boundary validation.
	ErrInvalidPolicy = errors.New("reconciliation: invalid policy")
	// ErrInvalidShopID is returned when a shop id is not positive.
	ErrInvalidShopID = errors.New("reconciliation: invalid shop id")
	// ErrEmptyOrderID is returned when an order id is empty.
	ErrEmptyOrderID = errors.New("reconciliation: empty order id")
	// ErrShopNotFound is returned when a shop is not registered.
	ErrShopNotFound = errors.New("reconciliation: shop not found")
)

// InvalidInputError reports malformed input rejected at a boundary.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("reconciliation: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) hold for every InvalidInputError.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
