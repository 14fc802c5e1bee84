package application

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"marketplace-recon/internal/observability/metrics"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

const (
	defaultSyncAttempts = 3
	defaultSyncBackoff  = 500 * time.Millisecond
)

// SyncResult summarizes one order sync.
type SyncResult struct {
	ShopID  int64                           `json:"shop_id"`
	Fetched int                             `json:"fetched"`
	Stored  int                             `json:"stored"`
	Skipped int                             `json:"skipped"`
	Records []reconciliation.ExpectedRecord `json:"records"`
}

// SyncService pulls order items from the marketplace and stores their expected payout.
type SyncService struct {
	shops    ShopRepository
	source   OrderSource
	items    OrderItemRepository
	logger   *log.Logger
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// SyncOption configures SyncService.
type SyncOption func(*SyncService)

// WithRetry sets the fetch attempts and the base backoff between them.
func WithRetry(attempts int, backoff time.Duration) SyncOption {
	return func(s *SyncService) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

// WithSyncLogger sets the logger.
func WithSyncLogger(logger *log.Logger) SyncOption {
	return func(s *SyncService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSyncService constructs the service.
func NewSyncService(shops ShopRepository, source OrderSource, items OrderItemRepository, opts ...SyncOption) (*SyncService, error) {
	if shops == nil {
		return nil, errors.New("sync service: nil shop repo")
	}
	if source == nil {
		return nil, errors.New("sync service: nil order source")
	}
	if items == nil {
		return nil, errors.New("sync service: nil order item repo")
	}
	s := &SyncService{
		shops:    shops,
		source:   source,
		items:    items,
		logger:   log.Default(),
		attempts: defaultSyncAttempts,
		backoff:  defaultSyncBackoff,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SyncOrders fetches the shop's items created in [from, to), computes them under the
// shop's current policy and appends the resulting expected records.
func (s *SyncService) SyncOrders(ctx context.Context, shopID int64, from, to time.Time) (*SyncResult, error) {
	started := time.Now()
	result, err := s.syncOrders(ctx, shopID, from, to)
	if err != nil {
		metrics.ObserveSync(metrics.ResultError, time.Since(started), 0)
		s.logger.Printf("sync orders failed: shop=%d err=%v", shopID, err)
		return nil, err
	}
	metrics.ObserveSync(metrics.ResultSuccess, time.Since(started), result.Stored)
	s.logger.Printf("sync orders: shop=%d fetched=%d stored=%d skipped=%d", shopID, result.Fetched, result.Stored, result.Skipped)
	return result, nil
}

func (s *SyncService) syncOrders(ctx context.Context, shopID int64, from, to time.Time) (*SyncResult, error) {
	if shopID <= 0 {
		return nil, reconciliation.ErrInvalidShopID
	}
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}
	shop, err := s.shops.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, reconciliation.ErrShopNotFound
	}

	items, err := s.fetch(ctx, *shop, from, to)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{ShopID: shopID, Fetched: len(items)}
	records := make([]reconciliation.ExpectedRecord, 0, len(items))
	for _, item := range items {
		item.ShopID = shopID
		record, err := reconciliation.Compute(item, shop.Policy)
		if err != nil {
			result.Skipped++
			s.logger.Printf("sync orders: skip item shop=%d order=%s err=%v", shopID, item.OrderID, err)
			continue
		}
		records = append(records, record)
	}
	if len(records) > 0 {
		if err := s.items.AppendExpected(ctx, records); err != nil {
			return nil, err
		}
	}
	result.Stored = len(records)
	result.Records = records
	return result, nil
}

func (s *SyncService) fetch(ctx context.Context, shop reconciliation.Shop, from, to time.Time) ([]reconciliation.OrderLineItem, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		items, err := s.source.ListOrderItems(ctx, shop, from, to)
		if err == nil {
			return items, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == s.attempts {
			break
		}
		s.logger.Printf("sync orders: retry shop=%d attempt=%d err=%v", shop.ID, attempt, err)
		if err := s.sleep(ctx, s.backoff*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

type temporary interface {
	Temporary() bool
}

// IsTransient reports whether err is worth retrying: errors that declare
// themselves temporary, and network timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var tmp temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}

func validateWindow(from, to time.Time) error {
	if from.IsZero() {
		return &reconciliation.InvalidInputError{Field: "from", Value: from, Reason: "required"}
	}
	if to.IsZero() {
		return &reconciliation.InvalidInputError{Field: "to", Value: to, Reason: "required"}
	}
	if !to.After(from) {
		return &reconciliation.InvalidInputError{Field: "to", Value: to, Reason: "must be after from"}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
