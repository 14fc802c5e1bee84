package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"marketplace-recon/internal/observability/metrics"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

// ReportService builds reconciliation reports from stored snapshots.
type ReportService struct {
	shops    ShopRepository
	items    OrderItemRepository
	releases ReleaseRepository
	logger   *log.Logger
}

// NewReportService constructs the service.
func NewReportService(shops ShopRepository, items OrderItemRepository, releases ReleaseRepository, logger *log.Logger) (*ReportService, error) {
	if shops == nil {
		return nil, errors.New("report service: nil shop repo")
	}
	if items == nil {
		return nil, errors.New("report service: nil order item repo")
	}
	if releases == nil {
		return nil, errors.New("report service: nil release repo")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReportService{shops: shops, items: items, releases: releases, logger: logger}, nil
}

// Build reconciles the expected records created in [from, to) against every
// release of the shop.
func (s *ReportService) Build(ctx context.Context, shopID int64, from, to time.Time) (*reconciliation.Report, error) {
	started := time.Now()
	report, err := s.build(ctx, shopID, from, to)
	if err != nil {
		metrics.ObserveReport(metrics.ResultError, time.Since(started))
		return nil, err
	}
	metrics.ObserveReport(metrics.ResultSuccess, time.Since(started))
	counts := make(map[string]int, len(reconciliation.Statuses))
	for _, status := range reconciliation.Statuses {
		counts[string(status)] = report.Summary.StatusCounts[status]
	}
	metrics.SetStatusCounts(shopID, counts)
	return report, nil
}

func (s *ReportService) build(ctx context.Context, shopID int64, from, to time.Time) (*reconciliation.Report, error) {
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

	expected, err := s.items.ListExpected(ctx, shopID, from, to)
	if err != nil {
		return nil, err
	}
	releases, err := s.releases.ListReleases(ctx, shopID)
	if err != nil {
		return nil, err
	}

	report := reconciliation.Reconcile(expected, releases, shopID)
	report.From = from
	report.To = to
	return &report, nil
}

// BuildMany builds one report per shop in parallel. The first failing shop,
// in input order, determines the returned error.
func (s *ReportService) BuildMany(ctx context.Context, shopIDs []int64, from, to time.Time) (map[int64]*reconciliation.Report, error) {
	reports := make([]*reconciliation.Report, len(shopIDs))
	errs := make([]error, len(shopIDs))

	var wg sync.WaitGroup
	for i, shopID := range shopIDs {
		wg.Add(1)
		go func(i int, shopID int64) {
			defer wg.Done()
			reports[i], errs[i] = s.Build(ctx, shopID, from, to)
		}(i, shopID)
	}
	wg.Wait()

	result := make(map[int64]*reconciliation.Report, len(shopIDs))
	for i, shopID := range shopIDs {
		if errs[i] != nil {
			s.logger.Printf("report: shop=%d err=%v", shopID, errs[i])
			return nil, errs[i]
		}
		result[shopID] = reports[i]
	}
	return result, nil
}
