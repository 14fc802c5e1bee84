package postgres

import (
	"context"
	"errors"
	"fmt"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

const defaultReleasesTable = "releases"

// ReleaseRepository stores imported releases. It only ever inserts.
type ReleaseRepository struct {
	db    DBTX
	table string
}

// ReleaseOption configures the repository.
type ReleaseOption func(*ReleaseRepository)

// WithReleaseTable overrides the default table name.
func WithReleaseTable(table string) ReleaseOption {
	return func(repo *ReleaseRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewReleaseRepository constructs a repository.
func NewReleaseRepository(db DBTX, opts ...ReleaseOption) *ReleaseRepository {
	repo := &ReleaseRepository{db: db, table: defaultReleasesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// AppendReleases inserts releases in one transaction.
func (r *ReleaseRepository) AppendReleases(ctx context.Context, releases []reconciliation.ReleaseRecord) error {
	if r == nil || r.db == nil {
		return errors.New("release repo: nil db")
	}
	if len(releases) == 0 {
		return nil
	}
	for _, release := range releases {
		if release.ShopID <= 0 {
			return reconciliation.ErrInvalidShopID
		}
		if release.OrderID == "" {
			return reconciliation.ErrEmptyOrderID
		}
	}
	query := fmt.Sprintf(`
INSERT INTO %s (shop_id, order_id, credited_amount, batch, release_date)
VALUES ($1,$2,$3,$4,$5)`, r.table)

	return inTx(ctx, r.db, func(db DBTX) error {
		for _, release := range releases {
			if _, err := db.ExecContext(ctx, query,
				release.ShopID, release.OrderID, release.CreditedAmount, release.Batch, release.ReleaseDate,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListReleases returns every release of the shop in insertion order.
func (r *ReleaseRepository) ListReleases(ctx context.Context, shopID int64) ([]reconciliation.ReleaseRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("release repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT shop_id, order_id, credited_amount, batch, release_date
FROM %s
WHERE shop_id = $1
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []reconciliation.ReleaseRecord
	for rows.Next() {
		var release reconciliation.ReleaseRecord
		if err := rows.Scan(&release.ShopID, &release.OrderID, &release.CreditedAmount, &release.Batch, &release.ReleaseDate); err != nil {
			return nil, err
		}
		result = append(result, release)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
