package application

import (
	"context"
	"time"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks -source=ports.go

// ShopRepository persists shops and their current policy.
type ShopRepository interface {
	Get(ctx context.Context, shopID int64) (*reconciliation.Shop, error)
	List(ctx context.Context) ([]reconciliation.Shop, error)
	Save(ctx context.Context, shop *reconciliation.Shop) error
	UpdatePolicy(ctx context.Context, shopID int64, policy reconciliation.Policy, updatedAt time.Time) error
}

// OrderItemRepository stores expected records. Inserts are append-only.
type OrderItemRepository interface {
	AppendExpected(ctx context.Context, records []reconciliation.ExpectedRecord) error
	ListExpected(ctx context.Context, shopID int64, from, to time.Time) ([]reconciliation.ExpectedRecord, error)
}

// ReleaseRepository stores imported payout releases. Inserts are append-only.
type ReleaseRepository interface {
	AppendReleases(ctx context.Context, releases []reconciliation.ReleaseRecord) error
	ListReleases(ctx context.Context, shopID int64) ([]reconciliation.ReleaseRecord, error)
}

// OrderSource lists normalized order line items from the marketplace.
type OrderSource interface {
	ListOrderItems(ctx context.Context, shop reconciliation.Shop, from, to time.Time) ([]reconciliation.OrderLineItem, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
