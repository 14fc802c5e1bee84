package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

// Store is an in-memory repository for demo/testing.
// It implements the shop, order item and release repository interfaces.
type Store struct {
	mu       sync.RWMutex
	shops    map[int64]reconciliation.Shop
	expected []reconciliation.ExpectedRecord
	releases []reconciliation.ReleaseRecord
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{shops: make(map[int64]reconciliation.Shop)}
}

// Get loads a shop by id. Missing shops return (nil, nil).
func (s *Store) Get(ctx context.Context, shopID int64) (*reconciliation.Shop, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	shop, ok := s.shops[shopID]
	if !ok {
		return nil, nil
	}
	return &shop, nil
}

// List returns shops ordered by id.
func (s *Store) List(ctx context.Context) ([]reconciliation.Shop, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]reconciliation.Shop, 0, len(s.shops))
	for _, shop := range s.shops {
		result = append(result, shop)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Save upserts a shop.
func (s *Store) Save(ctx context.Context, shop *reconciliation.Shop) error {
	_ = ctx
	if shop == nil {
		return errors.New("memory store: nil shop")
	}
	if shop.ID <= 0 {
		return reconciliation.ErrInvalidShopID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[shop.ID] = *shop
	return nil
}

// UpdatePolicy replaces the current policy of a shop.
func (s *Store) UpdatePolicy(ctx context.Context, shopID int64, policy reconciliation.Policy, updatedAt time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[shopID]
	if !ok {
		return reconciliation.ErrShopNotFound
	}
	shop.Policy = policy
	shop.UpdatedAt = updatedAt
	s.shops[shopID] = shop
	return nil
}

// AppendExpected appends expected records.
func (s *Store) AppendExpected(ctx context.Context, records []reconciliation.ExpectedRecord) error {
	_ = ctx
	for _, record := range records {
		if record.ShopID <= 0 {
			return reconciliation.ErrInvalidShopID
		}
		if record.OrderID == "" {
			return reconciliation.ErrEmptyOrderID
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expected = append(s.expected, records...)
	return nil
}

// ListExpected returns the shop's records created in [from, to), oldest first.
func (s *Store) ListExpected(ctx context.Context, shopID int64, from, to time.Time) ([]reconciliation.ExpectedRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []reconciliation.ExpectedRecord
	for _, record := range s.expected {
		if record.ShopID != shopID {
			continue
		}
		if record.CreatedTime.Before(from) || !record.CreatedTime.Before(to) {
			continue
		}
		result = append(result, record)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedTime.Before(result[j].CreatedTime) })
	return result, nil
}

// AppendReleases appends release records.
func (s *Store) AppendReleases(ctx context.Context, releases []reconciliation.ReleaseRecord) error {
	_ = ctx
	for _, release := range releases {
		if release.ShopID <= 0 {
			return reconciliation.ErrInvalidShopID
		}
		if release.OrderID == "" {
			return reconciliation.ErrEmptyOrderID
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases = append(s.releases, releases...)
	return nil
}

// ListReleases returns every release of the shop in insertion order.
func (s *Store) ListReleases(ctx context.Context, shopID int64) ([]reconciliation.ReleaseRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []reconciliation.ReleaseRecord
	for _, release := range s.releases {
		if release.ShopID == shopID {
			result = append(result, release)
		}
	}
	return result, nil
}
