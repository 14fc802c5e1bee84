package auth

import (
	"context"
	"slices"
)

// EnsureShopAccess returns ErrShopForbidden unless the caller in ctx may act
// on shopID. Callers without a shop scope may act on every shop.
func EnsureShopAccess(ctx context.Context, shopID int64) error {
	shops := ShopsFromContext(ctx)
	if len(shops) == 0 || slices.Contains(shops, shopID) {
		return nil
	}
	return ErrShopForbidden
}
