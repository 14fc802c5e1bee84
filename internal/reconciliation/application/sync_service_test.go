package application_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-recon/internal/reconciliation/application"
	"marketplace-recon/internal/reconciliation/application/mocks"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

type temporaryErr struct{ msg string }

func (e temporaryErr) Error() string   { return e.msg }
func (e temporaryErr) Temporary() bool { return true }

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSyncService_SyncOrders(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	shop := &reconciliation.Shop{ID: 10, Policy: reconciliation.Policy{CommissionPercent: 20, FixedFeePerUnit: 4}}
	items := []reconciliation.OrderLineItem{
		{OrderID: "240301ABC", ItemName: "kit", UnitPrice: 50, Quantity: 2, CreatedTime: from.Add(time.Hour)},
		{OrderID: "240301XYZ", ItemName: "bad", UnitPrice: -1, Quantity: 1, CreatedTime: from.Add(2 * time.Hour)},
	}

	ctrl := gomock.NewController(t)
	shops := mocks.NewMockShopRepository(ctrl)
	source := mocks.NewMockOrderSource(ctrl)
	repo := mocks.NewMockOrderItemRepository(ctrl)

	shops.EXPECT().Get(gomock.Any(), int64(10)).Return(shop, nil)
	source.EXPECT().ListOrderItems(gomock.Any(), *shop, from, to).Return(items, nil)
	repo.EXPECT().AppendExpected(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, records []reconciliation.ExpectedRecord) error {
		require.Len(t, records, 1)
		assert.Equal(t, int64(10), records[0].ShopID)
		assert.Equal(t, 72.0, records[0].Expected)
		return nil
	})

	svc, err := application.NewSyncService(shops, source, repo, application.WithSyncLogger(quietLogger()))
	require.NoError(t, err)

	result, err := svc.SyncOrders(context.Background(), 10, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Stored)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "240301ABC", result.Records[0].OrderID)
}

func TestSyncService_SkipsOverflowingItems(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	shop := &reconciliation.Shop{ID: 11, Policy: reconciliation.DefaultPolicy()}
	items := []reconciliation.OrderLineItem{
		{OrderID: "huge", ItemName: "x", UnitPrice: 1e308, Quantity: 2, CreatedTime: from},
		{OrderID: "fine", ItemName: "y", UnitPrice: 100, Quantity: 1, CreatedTime: from},
	}

	ctrl := gomock.NewController(t)
	shops := mocks.NewMockShopRepository(ctrl)
	source := mocks.NewMockOrderSource(ctrl)
	repo := mocks.NewMockOrderItemRepository(ctrl)

	shops.EXPECT().Get(gomock.Any(), int64(11)).Return(shop, nil)
	source.EXPECT().ListOrderItems(gomock.Any(), *shop, from, to).Return(items, nil)
	repo.EXPECT().AppendExpected(gomock.Any(), gomock.Len(1)).Return(nil)

	svc, err := application.NewSyncService(shops, source, repo, application.WithSyncLogger(quietLogger()))
	require.NoError(t, err)

	result, err := svc.SyncOrders(context.Background(), 11, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "fine", result.Records[0].OrderID)
	assert.Equal(t, 76.0, result.Records[0].Expected)
}

func TestSyncService_RetriesTransientErrors(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	shop := &reconciliation.Shop{ID: 4, Policy: reconciliation.DefaultPolicy()}

	ctrl := gomock.NewController(t)
	shops := mocks.NewMockShopRepository(ctrl)
	source := mocks.NewMockOrderSource(ctrl)
	repo := mocks.NewMockOrderItemRepository(ctrl)

	shops.EXPECT().Get(gomock.Any(), int64(4)).Return(shop, nil)
	gomock.InOrder(
		source.EXPECT().ListOrderItems(gomock.Any(), gomock.Any(), from, to).Return(nil, temporaryErr{msg: "503"}),
		source.EXPECT().ListOrderItems(gomock.Any(), gomock.Any(), from, to).Return([]reconciliation.OrderLineItem{
			{OrderID: "A", ItemName: "x", UnitPrice: 10, Quantity: 1, CreatedTime: from},
		}, nil),
	)
	repo.EXPECT().AppendExpected(gomock.Any(), gomock.Len(1)).Return(nil)

	svc, err := application.NewSyncService(shops, source, repo, application.WithRetry(3, 0), application.WithSyncLogger(quietLogger()))
	require.NoError(t, err)

	result, err := svc.SyncOrders(context.Background(), 4, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stored)
}

func TestSyncService_GivesUpAfterAttempts(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	ctrl := gomock.NewController(t)
	shops := mocks.NewMockShopRepository(ctrl)
	source := mocks.NewMockOrderSource(ctrl)
	repo := mocks.NewMockOrderItemRepository(ctrl)

	shops.EXPECT().Get(gomock.Any(), int64(4)).Return(&reconciliation.Shop{ID: 4}, nil)
	source.EXPECT().ListOrderItems(gomock.Any(), gomock.Any(), from, to).Return(nil, temporaryErr{msg: "429"}).Times(2)

	svc, err := application.NewSyncService(shops, source, repo, application.WithRetry(2, 0), application.WithSyncLogger(quietLogger()))
	require.NoError(t, err)

	_, err = svc.SyncOrders(context.Background(), 4, from, to)
	assert.EqualError(t, err, "429")
}

func TestSyncService_DoesNotRetryPermanentErrors(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	boom := errors.New("unauthorized")

	ctrl := gomock.NewController(t)
	shops := mocks.NewMockShopRepository(ctrl)
	source := mocks.NewMockOrderSource(ctrl)
	repo := mocks.NewMockOrderItemRepository(ctrl)

	shops.EXPECT().Get(gomock.Any(), int64(4)).Return(&reconciliation.Shop{ID: 4}, nil)
	source.EXPECT().ListOrderItems(gomock.Any(), gomock.Any(), from, to).Return(nil, boom).Times(1)

	svc, err := application.NewSyncService(shops, source, repo, application.WithRetry(5, 0), application.WithSyncLogger(quietLogger()))
	require.NoError(t, err)

	_, err = svc.SyncOrders(context.Background(), 4, from, to)
	assert.ErrorIs(t, err, boom)
}

func TestSyncService_Validation(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ctrl := gomock.NewController(t)
	shops := mocks.NewMockShopRepository(ctrl)
	source := mocks.NewMockOrderSource(ctrl)
	repo := mocks.NewMockOrderItemRepository(ctrl)
	shops.EXPECT().Get(gomock.Any(), int64(8)).Return(nil, nil)

	svc, err := application.NewSyncService(shops, source, repo, application.WithSyncLogger(quietLogger()))
	require.NoError(t, err)

	_, err = svc.SyncOrders(context.Background(), 0, from, from.Add(time.Hour))
	assert.ErrorIs(t, err, reconciliation.ErrInvalidShopID)

	_, err = svc.SyncOrders(context.Background(), 8, from, from)
	assert.ErrorIs(t, err, reconciliation.ErrInvalidInput)

	_, err = svc.SyncOrders(context.Background(), 8, from, from.Add(time.Hour))
	assert.ErrorIs(t, err, reconciliation.ErrShopNotFound)
}

func TestNewSyncService_NilDeps(t *testing.T) {
	_, err := application.NewSyncService(nil, nil, nil)
	assert.Error(t, err)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, application.IsTransient(temporaryErr{msg: "x"}))
	assert.True(t, application.IsTransient(errors.Join(errors.New("wrap"), temporaryErr{msg: "x"})))
	assert.False(t, application.IsTransient(errors.New("x")))
	assert.False(t, application.IsTransient(context.Canceled))
	assert.False(t, application.IsTransient(nil))
}
