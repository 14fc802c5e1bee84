package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

const defaultOrderItemsTable = "order_items"

// OrderItemRepository stores expected records. It only ever inserts.
type OrderItemRepository struct {
	db    DBTX
	table string
}

// OrderItemOption configures the repository.
type OrderItemOption func(*OrderItemRepository)

// WithOrderItemTable overrides the default table name.
func WithOrderItemTable(table string) OrderItemOption {
	return func(repo *OrderItemRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewOrderItemRepository constructs a repository.
func NewOrderItemRepository(db DBTX, opts ...OrderItemOption) *OrderItemRepository {
	repo := &OrderItemRepository{db: db, table: defaultOrderItemsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// AppendExpected inserts records in one transaction.
func (r *OrderItemRepository) AppendExpected(ctx context.Context, records []reconciliation.ExpectedRecord) error {
	if r == nil || r.db == nil {
		return errors.New("order item repo: nil db")
	}
	if len(records) == 0 {
		return nil
	}
	for _, record := range records {
		if record.ShopID <= 0 {
			return reconciliation.ErrInvalidShopID
		}
		if record.OrderID == "" {
			return reconciliation.ErrEmptyOrderID
		}
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	shop_id, order_id, item_name, unit_price, quantity, created_time,
	gross, commission, fixed_fee, expected
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`, r.table)

	return inTx(ctx, r.db, func(db DBTX) error {
		for _, record := range records {
			if _, err := db.ExecContext(ctx, query,
				record.ShopID, record.OrderID, record.ItemName, record.UnitPrice, record.Quantity, record.CreatedTime.UTC(),
				record.Gross, record.Commission, record.FixedFee, record.Expected,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListExpected returns the shop's records created in [from, to), oldest first.
func (r *OrderItemRepository) ListExpected(ctx context.Context, shopID int64, from, to time.Time) ([]reconciliation.ExpectedRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order item repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT shop_id, order_id, item_name, unit_price, quantity, created_time,
	gross, commission, fixed_fee, expected
FROM %s
WHERE shop_id = $1
	AND created_time >= $2
	AND created_time < $3
ORDER BY created_time ASC, id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, shopID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reconciliation.ExpectedRecord
	for rows.Next() {
		var record reconciliation.ExpectedRecord
		if err := rows.Scan(
			&record.ShopID,
			&record.OrderID,
			&record.ItemName,
			&record.UnitPrice,
			&record.Quantity,
			&record.CreatedTime,
			&record.Gross,
			&record.Commission,
			&record.FixedFee,
			&record.Expected,
		); err != nil {
			return nil, err
		}
		record.CreatedTime = record.CreatedTime.UTC()
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
