package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-recon/internal/reconciliation/application"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
	"marketplace-recon/internal/reconciliation/infrastructure/memory"
)

type staticSource struct {
	items map[int64][]reconciliation.OrderLineItem
}

func (s *staticSource) ListOrderItems(_ context.Context, shop reconciliation.Shop, from, to time.Time) ([]reconciliation.OrderLineItem, error) {
	var result []reconciliation.OrderLineItem
	for _, item := range s.items[shop.ID] {
		if item.CreatedTime.Before(from) || !item.CreatedTime.Before(to) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

type fixture struct {
	store    *memory.Store
	source   *staticSource
	shops    *application.ShopService
	syncer   *application.SyncService
	importer *application.ReleaseImporter
	reports  *application.ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	source := &staticSource{items: map[int64][]reconciliation.OrderLineItem{}}
	shops, err := application.NewShopService(store, reconciliation.DefaultPolicy(), nil)
	require.NoError(t, err)
	syncer, err := application.NewSyncService(store, source, store, application.WithSyncLogger(quietLogger()))
	require.NoError(t, err)
	importer, err := application.NewReleaseImporter(store, store, quietLogger())
	require.NoError(t, err)
	reports, err := application.NewReportService(store, store, store, quietLogger())
	require.NoError(t, err)
	return &fixture{store: store, source: source, shops: shops, syncer: syncer, importer: importer, reports: reports}
}

func TestReportService_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from, to := day, day.AddDate(0, 0, 1)

	_, err := f.shops.Register(ctx, application.RegisterShopInput{ShopID: 10})
	require.NoError(t, err)
	f.source.items[10] = []reconciliation.OrderLineItem{
		{OrderID: "240301ABC", ItemName: "kit", UnitPrice: 50, Quantity: 2, CreatedTime: day.Add(10 * time.Hour)},
	}
	_, err = f.syncer.SyncOrders(ctx, 10, from, to)
	require.NoError(t, err)

	opts := application.ImportOptions{OrderColumn: "order_sn", AmountColumn: "amount"}
	_, err = f.importer.Import(ctx, 10, strings.NewReader("order_sn,amount\n240301ABC,30\n240301ABC,30\n"), opts)
	require.NoError(t, err)

	report, err := f.reports.Build(ctx, 10, from, to)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, reconciliation.StatusPartial, report.Rows[0].Status)
	assert.Equal(t, -12.0, report.Rows[0].Delta)
	assert.Equal(t, from, report.From)
	assert.Equal(t, to, report.To)

	_, err = f.importer.Import(ctx, 10, strings.NewReader("order_sn,amount\n240301ABC,12\n"), opts)
	require.NoError(t, err)

	report, err = f.reports.Build(ctx, 10, from, to)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, reconciliation.StatusReleased, report.Rows[0].Status)
	assert.Equal(t, 0.0, report.Rows[0].Delta)
	assert.Equal(t, 1, report.Summary.StatusCounts[reconciliation.StatusReleased])
}

func TestReportService_PolicyEditIsNotRetroactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.shops.Register(ctx, application.RegisterShopInput{ShopID: 10})
	require.NoError(t, err)
	f.source.items[10] = []reconciliation.OrderLineItem{
		{OrderID: "old", ItemName: "kit", UnitPrice: 50, Quantity: 2, CreatedTime: day.Add(time.Hour)},
		{OrderID: "new", ItemName: "kit", UnitPrice: 50, Quantity: 2, CreatedTime: day.Add(26 * time.Hour)},
	}
	_, err = f.syncer.SyncOrders(ctx, 10, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	_, err = f.shops.UpdatePolicy(ctx, 10, reconciliation.Policy{CommissionPercent: 10, FixedFeePerUnit: 1})
	require.NoError(t, err)
	_, err = f.syncer.SyncOrders(ctx, 10, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
	require.NoError(t, err)

	report, err := f.reports.Build(ctx, 10, day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	expected := map[string]float64{}
	for _, row := range report.Rows {
		expected[row.OrderID] = row.Expected
	}
	assert.Equal(t, 72.0, expected["old"], "record computed before the edit keeps the old policy")
	assert.Equal(t, 88.0, expected["new"], "100 - 10% - 2x1")
}

func TestReportService_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.reports.Build(ctx, 10, day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, reconciliation.ErrShopNotFound)

	_, err = f.reports.Build(ctx, -1, day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, reconciliation.ErrInvalidShopID)

	_, err = f.reports.Build(ctx, 10, day, day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, reconciliation.ErrInvalidInput)
}

func TestReportService_BuildMany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, shopID := range []int64{1, 2, 3} {
		_, err := f.shops.Register(ctx, application.RegisterShopInput{ShopID: shopID})
		require.NoError(t, err)
		f.source.items[shopID] = []reconciliation.OrderLineItem{
			{OrderID: "same-id", ItemName: "kit", UnitPrice: 50, Quantity: 2, CreatedTime: day},
		}
		_, err = f.syncer.SyncOrders(ctx, shopID, day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
	}
	_, err := f.importer.Import(ctx, 2, strings.NewReader("o,a\nsame-id,72\n"), application.ImportOptions{OrderColumn: "o", AmountColumn: "a"})
	require.NoError(t, err)

	reports, err := f.reports.BuildMany(ctx, []int64{1, 2, 3}, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, reconciliation.StatusPending, reports[1].Rows[0].Status)
	assert.Equal(t, reconciliation.StatusReleased, reports[2].Rows[0].Status)
	assert.Equal(t, reconciliation.StatusPending, reports[3].Rows[0].Status)

	_, err = f.reports.BuildMany(ctx, []int64{1, 404}, day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, reconciliation.ErrShopNotFound)
}
