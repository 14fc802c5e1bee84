package metrics

import (
	"database/sql"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "recon_"

	resultSuccess = "success"
	resultError   = "error"

	rowOutcomeAccepted = "accepted"
	rowOutcomeRejected = "rejected"
)

var (
	registerOnce sync.Once

	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	syncTotal   *prometheus.CounterVec
	syncLatency *prometheus.HistogramVec
	syncItems   prometheus.Counter

	releaseImportTotal *prometheus.CounterVec
	releaseRowsTotal   *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	rowsByStatus *prometheus.GaugeVec

	alertsTotal *prometheus.CounterVec
)

// Init registers reconciliation metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_total",
				Help: "Total reconciliation reports by result",
			},
			[]string{"result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Reconciliation report latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		syncTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sync_total",
				Help: "Total order sync runs by result",
			},
			[]string{"result"},
		)
		syncLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "sync_latency_seconds",
				Help:    "Order sync latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		syncItems = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "sync_items_total",
				Help: "Total expected records stored by order sync",
			},
		)

		releaseImportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "release_import_total",
				Help: "Total release imports by result",
			},
			[]string{"result"},
		)
		releaseRowsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "release_rows_total",
				Help: "Total imported release rows by outcome",
			},
			[]string{"outcome"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		rowsByStatus = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "rows_by_status",
				Help: "Line items per reconciliation status in the latest report of a shop",
			},
			[]string{"shop", "status"},
		)

		alertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_total",
				Help: "Total review alerts by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			reportTotal,
			reportLatency,
			syncTotal,
			syncLatency,
			syncItems,
			releaseImportTotal,
			releaseRowsTotal,
			exportTotal,
			exportLatency,
			rowsByStatus,
			alertsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveReport records report latency and result.
func ObserveReport(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportTotal != nil {
		reportTotal.WithLabelValues(result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveSync records sync latency, result and stored items.
func ObserveSync(result string, duration time.Duration, stored int) {
	if result == "" {
		result = resultSuccess
	}
	if syncTotal != nil {
		syncTotal.WithLabelValues(result).Inc()
	}
	if syncLatency != nil {
		syncLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if syncItems != nil && stored > 0 {
		syncItems.Add(float64(stored))
	}
}

// ObserveReleaseImport records an import and its row outcomes.
func ObserveReleaseImport(result string, accepted, rejected int) {
	if result == "" {
		result = resultSuccess
	}
	if releaseImportTotal != nil {
		releaseImportTotal.WithLabelValues(result).Inc()
	}
	if releaseRowsTotal == nil {
		return
	}
	if accepted > 0 {
		releaseRowsTotal.WithLabelValues(rowOutcomeAccepted).Add(float64(accepted))
	}
	if rejected > 0 {
		releaseRowsTotal.WithLabelValues(rowOutcomeRejected).Add(float64(rejected))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// SetStatusCounts publishes the per-status row counts of a shop report.
func SetStatusCounts(shopID int64, counts map[string]int) {
	if rowsByStatus == nil {
		return
	}
	shop := strconv.FormatInt(shopID, 10)
	for status, count := range counts {
		rowsByStatus.WithLabelValues(shop, status).Set(float64(count))
	}
}

// IncAlert increments the review alert counter.
func IncAlert(result string) {
	if result == "" {
		result = resultSuccess
	}
	if alertsTotal != nil {
		alertsTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
