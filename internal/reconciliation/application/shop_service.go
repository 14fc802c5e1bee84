package application

import (
	"context"
	"errors"
	"fmt"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

// RegisterShopInput carries the fields of a shop connection.
type RegisterShopInput struct {
	ShopID      int64
	Alias       string
	TaxID       string
	AccessToken string
	Policy      *reconciliation.Policy
}

// ShopService manages shop registration and policy edits.
type ShopService struct {
	repo          ShopRepository
	defaultPolicy reconciliation.Policy
	clock         Clock
}

// NewShopService constructs the service.
func NewShopService(repo ShopRepository, defaultPolicy reconciliation.Policy, clock Clock) (*ShopService, error) {
	if repo == nil {
		return nil, errors.New("shop service: nil repo")
	}
	if err := defaultPolicy.Validate(); err != nil {
		return nil, fmt.Errorf("shop service: default policy: %w", err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ShopService{repo: repo, defaultPolicy: defaultPolicy, clock: clock}, nil
}

// Register creates or replaces a shop connection.
func (s *ShopService) Register(ctx context.Context, input RegisterShopInput) (*reconciliation.Shop, error) {
	if input.ShopID <= 0 {
		return nil, reconciliation.ErrInvalidShopID
	}
	policy := s.defaultPolicy
	if input.Policy != nil {
		policy = *input.Policy
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	shop := &reconciliation.Shop{
		ID:          input.ShopID,
		Alias:       input.Alias,
		TaxID:       input.TaxID,
		AccessToken: input.AccessToken,
		Policy:      policy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	existing, err := s.repo.Get(ctx, input.ShopID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		shop.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Save(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

// UpdatePolicy replaces the policy used for future computations.
// Records computed before the edit keep their values.
func (s *ShopService) UpdatePolicy(ctx context.Context, shopID int64, policy reconciliation.Policy) (*reconciliation.Shop, error) {
	if shopID <= 0 {
		return nil, reconciliation.ErrInvalidShopID
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	shop, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := s.repo.UpdatePolicy(ctx, shopID, policy, now); err != nil {
		return nil, err
	}
	shop.Policy = policy
	shop.UpdatedAt = now
	return shop, nil
}

// Get returns a shop or ErrShopNotFound.
func (s *ShopService) Get(ctx context.Context, shopID int64) (*reconciliation.Shop, error) {
	if shopID <= 0 {
		return nil, reconciliation.ErrInvalidShopID
	}
	shop, err := s.repo.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, reconciliation.ErrShopNotFound
	}
	return shop, nil
}

// List returns every registered shop.
func (s *ShopService) List(ctx context.Context) ([]reconciliation.Shop, error) {
	return s.repo.List(ctx)
}
