package application

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"marketplace-recon/internal/observability/metrics"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
	"marketplace-recon/internal/reconciliation/notify"
)

const dateLayout = "2006-01-02"

// OrderSyncer syncs marketplace orders of a shop.
type OrderSyncer interface {
	SyncOrders(ctx context.Context, shopID int64, from, to time.Time) (*SyncResult, error)
}

// ReportBuilder builds a shop report.
type ReportBuilder interface {
	Build(ctx context.Context, shopID int64, from, to time.Time) (*reconciliation.Report, error)
}

// ShopRun is the outcome of one scheduled shop run.
type ShopRun struct {
	ShopID  int64
	Synced  int
	Report  *reconciliation.Report
	Alerted bool
	Err     error
}

// Scheduler periodically syncs shops, rebuilds their reports and raises review alerts.
type Scheduler struct {
	shops    ShopRepository
	syncer   OrderSyncer
	reports  ReportBuilder
	notifier notify.Notifier
	cfg      Config
	clock    Clock
	logger   *log.Logger

	mu     sync.Mutex
	synced map[int64]time.Time
}

// NewScheduler constructs a Scheduler. notifier may be nil to disable alerts.
func NewScheduler(shops ShopRepository, syncer OrderSyncer, reports ReportBuilder, notifier notify.Notifier, cfg Config, clock Clock, logger *log.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		shops:    shops,
		syncer:   syncer,
		reports:  reports,
		notifier: notifier,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		synced:   make(map[int64]time.Time),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.syncer == nil || s.reports == nil || s.cfg.Schedule.Every <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.Schedule.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx, s.clock.Now())
		}
	}
}

// RunOnce processes every scheduled shop over the lookback window ending with
// the day of now. Orders are fetched only from where the previous run of the
// shop stopped, so repeated runs never store the same order twice; the report
// still covers the whole window.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) []ShopRun {
	shopIDs, err := s.scheduledShops(ctx)
	if err != nil {
		s.logger.Printf("recon schedule: list shops err=%v", err)
		return nil
	}
	from, to := LookbackWindow(now, s.cfg.Schedule.LookbackDays)

	runs := make([]ShopRun, 0, len(shopIDs))
	for _, shopID := range shopIDs {
		if ctx.Err() != nil {
			break
		}
		run := s.runShop(ctx, shopID, from, to, now.UTC())
		if run.Err != nil {
			s.logger.Printf("recon schedule error: shop=%d err=%v", shopID, run.Err)
		}
		runs = append(runs, run)
	}
	return runs
}

func (s *Scheduler) runShop(ctx context.Context, shopID int64, from, to, now time.Time) ShopRun {
	run := ShopRun{ShopID: shopID}
	syncFrom := s.syncCursor(shopID, from)
	if syncFrom.Before(now) {
		synced, err := s.syncer.SyncOrders(ctx, shopID, syncFrom, now)
		if err != nil {
			run.Err = err
			return run
		}
		run.Synced = synced.Stored
		s.advanceCursor(shopID, now)
	}

	report, err := s.reports.Build(ctx, shopID, from, to)
	if err != nil {
		run.Err = err
		return run
	}
	run.Report = report

	thresholds := s.cfg.ThresholdsForShop(shopID)
	if s.notifier == nil || !IsThresholdExceeded(report.Summary, thresholds) {
		return run
	}
	if err := s.notifier.Notify(ctx, s.alertMessage(ctx, report)); err != nil {
		metrics.IncAlert(metrics.ResultError)
		s.logger.Printf("recon alert failed: shop=%d err=%v", shopID, err)
		return run
	}
	metrics.IncAlert(metrics.ResultSuccess)
	run.Alerted = true
	return run
}

func (s *Scheduler) syncCursor(shopID int64, from time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.synced[shopID]; ok && last.After(from) {
		return last
	}
	return from
}

func (s *Scheduler) advanceCursor(shopID int64, to time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to.After(s.synced[shopID]) {
		s.synced[shopID] = to
	}
}

func (s *Scheduler) scheduledShops(ctx context.Context) ([]int64, error) {
	if len(s.cfg.Schedule.Shops) > 0 {
		return s.cfg.Schedule.Shops, nil
	}
	if s.shops == nil {
		return nil, nil
	}
	shops, err := s.shops.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(shops))
	for _, shop := range shops {
		ids = append(ids, shop.ID)
	}
	return ids, nil
}

func (s *Scheduler) alertMessage(ctx context.Context, report *reconciliation.Report) notify.AlertMessage {
	fromDay := report.From.Format(dateLayout)
	toDay := report.To.AddDate(0, 0, -1).Format(dateLayout)
	msg := notify.AlertMessage{
		ShopID:        report.ShopID,
		From:          fromDay,
		To:            toDay,
		NeedsReview:   report.Summary.StatusCounts[reconciliation.StatusNeedsReview],
		AboveExpected: report.Summary.StatusCounts[reconciliation.StatusAboveExpected],
		Delta:         reconciliation.FormatAmount(report.Summary.Delta),
		Meta:          map[string]string{"trigger": "schedule"},
	}
	if s.shops != nil {
		if shop, err := s.shops.Get(ctx, report.ShopID); err == nil && shop != nil {
			msg.ShopName = shop.DisplayName()
		}
	}
	if base := strings.TrimRight(s.cfg.Alerts.PublicBaseURL, "/"); base != "" {
		msg.ReportURL = fmt.Sprintf("%s/api/v1/shops/%d/reconciliation?from=%s&to=%s", base, report.ShopID, fromDay, toDay)
	}
	return msg
}

// IsThresholdExceeded reports whether a summary crosses any enabled threshold.
func IsThresholdExceeded(summary reconciliation.Summary, thresholds Thresholds) bool {
	if thresholds.NeedsReview > 0 && summary.StatusCounts[reconciliation.StatusNeedsReview] >= thresholds.NeedsReview {
		return true
	}
	if thresholds.AboveExpected > 0 && summary.StatusCounts[reconciliation.StatusAboveExpected] >= thresholds.AboveExpected {
		return true
	}
	return false
}

// LookbackWindow returns the half-open range [from, to) covering the last days
// calendar days (UTC) up to and including the day of now.
func LookbackWindow(now time.Time, days int) (time.Time, time.Time) {
	if days <= 0 {
		days = 1
	}
	now = now.UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return to.AddDate(0, 0, -days), to
}
