package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

const defaultShopsTable = "shops"

// ShopRepository is a Postgres implementation for shops.
type ShopRepository struct {
	db    DBTX
	table string
}

// ShopOption configures the repository.
type ShopOption func(*ShopRepository)

// WithShopTable overrides the default table name.
func WithShopTable(table string) ShopOption {
	return func(repo *ShopRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewShopRepository constructs a repository.
func NewShopRepository(db DBTX, opts ...ShopOption) *ShopRepository {
	repo := &ShopRepository{db: db, table: defaultShopsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Get loads a shop by id. Missing shops return (nil, nil).
func (r *ShopRepository) Get(ctx context.Context, shopID int64) (*reconciliation.Shop, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("shop repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT shop_id, alias, tax_id, access_token, commission_percent, fixed_fee_per_unit, created_at, updated_at
FROM %s
WHERE shop_id = $1
LIMIT 1`, r.table)
	shop, err := scanShop(r.db.QueryRowContext(ctx, query, shopID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return shop, err
}

// List returns shops ordered by id.
func (r *ShopRepository) List(ctx context.Context) ([]reconciliation.Shop, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("shop repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT shop_id, alias, tax_id, access_token, commission_percent, fixed_fee_per_unit, created_at, updated_at
FROM %s
ORDER BY shop_id ASC`, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reconciliation.Shop
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *shop)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Save upserts a shop.
func (r *ShopRepository) Save(ctx context.Context, shop *reconciliation.Shop) error {
	if r == nil || r.db == nil {
		return errors.New("shop repo: nil db")
	}
	if shop == nil {
		return errors.New("shop repo: nil shop")
	}
	if shop.ID <= 0 {
		return reconciliation.ErrInvalidShopID
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	shop_id, alias, tax_id, access_token, commission_percent, fixed_fee_per_unit, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (shop_id) DO UPDATE SET
	alias = EXCLUDED.alias,
	tax_id = EXCLUDED.tax_id,
	access_token = EXCLUDED.access_token,
	commission_percent = EXCLUDED.commission_percent,
	fixed_fee_per_unit = EXCLUDED.fixed_fee_per_unit,
	updated_at = EXCLUDED.updated_at`, r.table)
	_, err := r.db.ExecContext(ctx, query,
		shop.ID, shop.Alias, shop.TaxID, shop.AccessToken,
		shop.Policy.CommissionPercent, shop.Policy.FixedFeePerUnit,
		shop.CreatedAt.UTC(), shop.UpdatedAt.UTC(),
	)
	return err
}

// UpdatePolicy replaces the current policy of a shop.
func (r *ShopRepository) UpdatePolicy(ctx context.Context, shopID int64, policy reconciliation.Policy, updatedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("shop repo: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s
SET commission_percent = $1, fixed_fee_per_unit = $2, updated_at = $3
WHERE shop_id = $4`, r.table)
	res, err := r.db.ExecContext(ctx, query, policy.CommissionPercent, policy.FixedFeePerUnit, updatedAt.UTC(), shopID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return reconciliation.ErrShopNotFound
	}
	return nil
}

func scanShop(row rowScanner) (*reconciliation.Shop, error) {
	var shop reconciliation.Shop
	if err := row.Scan(
		&shop.ID,
		&shop.Alias,
		&shop.TaxID,
		&shop.AccessToken,
		&shop.Policy.CommissionPercent,
		&shop.Policy.FixedFeePerUnit,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	); err != nil {
		return nil, err
	}
	shop.CreatedAt = shop.CreatedAt.UTC()
	shop.UpdatedAt = shop.UpdatedAt.UTC()
	return &shop, nil
}
