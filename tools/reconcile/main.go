package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	reconapp "marketplace-recon/internal/reconciliation/application"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
	reconrepo "marketplace-recon/internal/reconciliation/infrastructure/postgres"
	reconhttp "marketplace-recon/internal/reconciliation/interfaces"
)

const dayLayout = "2006-01-02"

type config struct {
	dbURL    string
	shopID   int64
	from     string
	to       string
	outDir   string
	currency string
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	from, to, err := parseRange(cfg.from, cfg.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "create out dir:", err)
		os.Exit(2)
	}

	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db open:", err)
		os.Exit(2)
	}
	defer db.Close()

	logger := log.New(io.Discard, "", 0)
	shopRepo := reconrepo.NewShopRepository(db)
	reports, err := reconapp.NewReportService(shopRepo, reconrepo.NewOrderItemRepository(db), reconrepo.NewReleaseRepository(db), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := context.Background()
	report, err := reports.Build(ctx, cfg.shopID, from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build report:", err)
		os.Exit(1)
	}
	shop, err := shopRepo.Get(ctx, cfg.shopID)
	if err != nil || shop == nil {
		shop = &reconciliation.Shop{ID: cfg.shopID}
	}

	meta := reconhttp.ExportMeta{
		ShopName: shop.DisplayName(),
		Currency: cfg.currency,
		FromDay:  cfg.from,
		ToDay:    cfg.to,
	}
	base := fmt.Sprintf("reconciliation_%d_%s_%s", cfg.shopID, cfg.from, cfg.to)
	if err := writeCSV(filepath.Join(cfg.outDir, base+".csv"), report); err != nil {
		fmt.Fprintln(os.Stderr, "write csv:", err)
		os.Exit(1)
	}
	if err := writeXLSX(filepath.Join(cfg.outDir, base+".xlsx"), report, meta); err != nil {
		fmt.Fprintln(os.Stderr, "write xlsx:", err)
		os.Exit(1)
	}

	summary := report.Summary
	fmt.Printf("shop=%d items=%d orders=%d expected=%s credited=%s delta=%s\n",
		cfg.shopID, summary.Items, summary.Orders,
		reconciliation.FormatAmount(summary.Expected),
		reconciliation.FormatAmount(summary.Credited),
		reconciliation.FormatAmount(summary.Delta))
	for _, status := range reconciliation.Statuses {
		fmt.Printf("  %s=%d\n", status, summary.StatusCounts[status])
	}
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.StringVar(&cfg.dbURL, "db", getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")), "Postgres DSN")
	shop := fs.String("shop", "", "shop id")
	fs.StringVar(&cfg.from, "from", "", "first day in YYYY-MM-DD")
	fs.StringVar(&cfg.to, "to", "", "last day in YYYY-MM-DD (inclusive)")
	fs.StringVar(&cfg.outDir, "out", "./out", "output directory")
	fs.StringVar(&cfg.currency, "currency", getenvDefault("CURRENCY", "BRL"), "currency label")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.dbURL == "" {
		return cfg, errors.New("missing --db or DATABASE_URL/PG_DSN")
	}
	if *shop == "" {
		return cfg, errors.New("missing --shop")
	}
	shopID, err := strconv.ParseInt(*shop, 10, 64)
	if err != nil || shopID <= 0 {
		return cfg, errors.New("--shop must be a positive integer")
	}
	cfg.shopID = shopID
	if cfg.from == "" || cfg.to == "" {
		return cfg, errors.New("missing --from/--to (YYYY-MM-DD)")
	}
	return cfg, nil
}

func parseRange(fromDay, toDay string) (time.Time, time.Time, error) {
	from, err := time.Parse(dayLayout, fromDay)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	last, err := time.Parse(dayLayout, toDay)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	to := last.AddDate(0, 0, 1)
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("--to must not be before --from")
	}
	return from.UTC(), to.UTC(), nil
}

func writeCSV(path string, report *reconciliation.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := reconhttp.WriteReportCSV(file, report); err != nil {
		return err
	}
	return file.Close()
}

func writeXLSX(path string, report *reconciliation.Report, meta reconhttp.ExportMeta) error {
	data, err := reconhttp.BuildReportXLSX(report, meta)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
