package application

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"marketplace-recon/internal/observability/metrics"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

// ImportOptions maps statement columns onto release fields.
type ImportOptions struct {
	OrderColumn  string
	AmountColumn string
	BatchColumn  string
	DateColumn   string
	Delimiter    rune
}

// RowError reports a rejected statement line.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a release import.
type ImportResult struct {
	ShopID   int64                          `json:"shop_id"`
	Accepted int                            `json:"accepted"`
	Rejected []RowError                     `json:"rejected"`
	Releases []reconciliation.ReleaseRecord `json:"releases"`
}

// ReleaseImporter parses payout statements and appends their releases.
type ReleaseImporter struct {
	shops    ShopRepository
	releases ReleaseRepository
	logger   *log.Logger
}

// NewReleaseImporter constructs the importer.
func NewReleaseImporter(shops ShopRepository, releases ReleaseRepository, logger *log.Logger) (*ReleaseImporter, error) {
	if shops == nil {
		return nil, errors.New("release importer: nil shop repo")
	}
	if releases == nil {
		return nil, errors.New("release importer: nil release repo")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReleaseImporter{shops: shops, releases: releases, logger: logger}, nil
}

// Import reads a delimited statement with a header line. Rows with an empty order
// id or an unparseable amount are rejected with their line number; the valid rows
// are appended.
func (i *ReleaseImporter) Import(ctx context.Context, shopID int64, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	result, err := i.importReleases(ctx, shopID, r, opts)
	if err != nil {
		metrics.ObserveReleaseImport(metrics.ResultError, 0, 0)
		i.logger.Printf("release import failed: shop=%d err=%v", shopID, err)
		return nil, err
	}
	metrics.ObserveReleaseImport(metrics.ResultSuccess, result.Accepted, len(result.Rejected))
	i.logger.Printf("release import: shop=%d accepted=%d rejected=%d", shopID, result.Accepted, len(result.Rejected))
	return result, nil
}

func (i *ReleaseImporter) importReleases(ctx context.Context, shopID int64, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	if shopID <= 0 {
		return nil, reconciliation.ErrInvalidShopID
	}
	if r == nil {
		return nil, &reconciliation.InvalidInputError{Field: "body", Reason: "required"}
	}
	if strings.TrimSpace(opts.OrderColumn) == "" {
		return nil, &reconciliation.InvalidInputError{Field: "order_col", Reason: "required"}
	}
	if strings.TrimSpace(opts.AmountColumn) == "" {
		return nil, &reconciliation.InvalidInputError{Field: "amount_col", Reason: "required"}
	}
	shop, err := i.shops.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, reconciliation.ErrShopNotFound
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &reconciliation.InvalidInputError{Field: "body", Reason: "empty statement"}
	}
	if err != nil {
		return nil, &reconciliation.InvalidInputError{Field: "body", Reason: err.Error()}
	}
	columns := indexColumns(header)
	orderIdx, err := requireColumn(columns, "order_col", opts.OrderColumn)
	if err != nil {
		return nil, err
	}
	amountIdx, err := requireColumn(columns, "amount_col", opts.AmountColumn)
	if err != nil {
		return nil, err
	}
	batchIdx, err := optionalColumn(columns, "batch_col", opts.BatchColumn)
	if err != nil {
		return nil, err
	}
	dateIdx, err := optionalColumn(columns, "date_col", opts.DateColumn)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{ShopID: shopID, Rejected: []RowError{}}
	var releases []reconciliation.ReleaseRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Rejected = append(result.Rejected, RowError{Line: parseErr.StartLine, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, err
		}
		if isBlankRecord(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		orderID := strings.TrimSpace(field(record, orderIdx))
		if orderID == "" {
			result.Rejected = append(result.Rejected, RowError{Line: line, Reason: "empty order id"})
			continue
		}
		amount, err := ParseAmount(field(record, amountIdx))
		if err != nil {
			result.Rejected = append(result.Rejected, RowError{Line: line, Reason: err.Error()})
			continue
		}
		releases = append(releases, reconciliation.ReleaseRecord{
			ShopID:         shopID,
			OrderID:        orderID,
			CreditedAmount: amount,
			Batch:          strings.TrimSpace(field(record, batchIdx)),
			ReleaseDate:    strings.TrimSpace(field(record, dateIdx)),
		})
	}

	if len(releases) > 0 {
		if err := i.releases.AppendReleases(ctx, releases); err != nil {
			return nil, err
		}
	}
	result.Accepted = len(releases)
	result.Releases = releases
	return result, nil
}

// ParseAmount parses a statement amount. A lone comma is accepted as the
// decimal separator ("12,50").
func ParseAmount(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	value = strings.ReplaceAll(value, " ", "")
	if value == "" {
		return 0, errors.New("empty amount")
	}
	if strings.Count(value, ",") == 1 && !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	f, _ := amount.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("amount out of range %q", raw)
	}
	return f, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := columns[name]; !ok {
			columns[name] = idx
		}
	}
	return columns
}

func requireColumn(columns map[string]int, param, name string) (int, error) {
	idx, ok := columns[strings.TrimSpace(name)]
	if !ok {
		return -1, &reconciliation.InvalidInputError{Field: param, Value: name, Reason: "column not found"}
	}
	return idx, nil
}

func optionalColumn(columns map[string]int, param, name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return -1, nil
	}
	return requireColumn(columns, param, name)
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
