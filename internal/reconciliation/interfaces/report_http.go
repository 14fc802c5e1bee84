package interfaces

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"marketplace-recon/internal/audit"
	"marketplace-recon/internal/auth"
	"marketplace-recon/internal/observability/metrics"
	reconapp "marketplace-recon/internal/reconciliation/application"
	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

const (
	dayLayout          = "2006-01-02"
	defaultReportDays  = 7
	maxImportBodyBytes = 32 << 20
)

// HandlerConfig wires the reconciliation handler.
type HandlerConfig struct {
	Shops       *reconapp.ShopService
	Syncer      *reconapp.SyncService
	Importer    *reconapp.ReleaseImporter
	Reports     *reconapp.ReportService
	Items       reconapp.OrderItemRepository
	AuditLogger audit.Logger
	Clock       reconapp.Clock
	Currency    string
	Logger      *log.Logger
}

// Handler serves shop, sync, import, report and export endpoints.
type Handler struct {
	shops       *reconapp.ShopService
	syncer      *reconapp.SyncService
	importer    *reconapp.ReleaseImporter
	reports     *reconapp.ReportService
	items       reconapp.OrderItemRepository
	auditLogger audit.Logger
	clock       reconapp.Clock
	currency    string
	logger      *log.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Shops == nil {
		return nil, errors.New("recon handler: nil shop service")
	}
	if cfg.Reports == nil {
		return nil, errors.New("recon handler: nil report service")
	}
	if cfg.Clock == nil {
		cfg.Clock = reconapp.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Handler{
		shops:       cfg.Shops,
		syncer:      cfg.Syncer,
		importer:    cfg.Importer,
		reports:     cfg.Reports,
		items:       cfg.Items,
		auditLogger: cfg.AuditLogger,
		clock:       cfg.Clock,
		currency:    cfg.Currency,
		logger:      cfg.Logger,
	}, nil
}

// ServeHTTP routes /api/v1/shops requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/shops" {
		switch r.Method {
		case http.MethodGet:
			h.handleListShops(w, r)
		case http.MethodPost:
			h.handleRegisterShop(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/shops/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/shops/"), "/")
	parts := strings.Split(path, "/")
	shopID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || shopID <= 0 {
		http.Error(w, "invalid shop id", http.StatusBadRequest)
		return
	}
	if err := auth.EnsureShopAccess(r.Context(), shopID); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetShop(w, r, shopID)
	case len(parts) == 2 && parts[1] == "policy" && r.Method == http.MethodPut:
		h.handlePolicy(w, r, shopID)
	case len(parts) == 2 && parts[1] == "sync" && r.Method == http.MethodPost:
		h.handleSync(w, r, shopID)
	case len(parts) == 3 && parts[1] == "releases" && parts[2] == "import" && r.Method == http.MethodPost:
		h.handleImport(w, r, shopID)
	case len(parts) == 2 && parts[1] == "reconciliation" && r.Method == http.MethodGet:
		h.handleReport(w, r, shopID)
	case len(parts) == 3 && parts[1] == "reconciliation" && r.Method == http.MethodGet:
		h.handleExport(w, r, shopID, parts[2])
	case len(parts) == 2 && parts[1] == "orders.csv" && r.Method == http.MethodGet:
		h.handleOrdersExport(w, r, shopID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shops.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	visible := make([]reconciliation.Shop, 0, len(shops))
	for _, shop := range shops {
		if auth.EnsureShopAccess(r.Context(), shop.ID) != nil {
			continue
		}
		visible = append(visible, shop)
	}
	h.writeJSON(w, http.StatusOK, visible)
}

func (h *Handler) handleRegisterShop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopID      int64                  `json:"shop_id"`
		Alias       string                 `json:"alias"`
		TaxID       string                 `json:"tax_id"`
		AccessToken string                 `json:"access_token"`
		Policy      *reconciliation.Policy `json:"policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := auth.EnsureShopAccess(r.Context(), req.ShopID); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	shop, err := h.shops.Register(r.Context(), reconapp.RegisterShopInput{
		ShopID:      req.ShopID,
		Alias:       req.Alias,
		TaxID:       req.TaxID,
		AccessToken: req.AccessToken,
		Policy:      req.Policy,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, shop)
	h.logAudit(r, shop.ID, "shop.register", map[string]any{
		"alias":              shop.Alias,
		"commission_percent": shop.Policy.CommissionPercent,
		"fixed_fee_per_unit": shop.Policy.FixedFeePerUnit,
	})
}

func (h *Handler) handleGetShop(w http.ResponseWriter, r *http.Request, shopID int64) {
	shop, err := h.shops.Get(r.Context(), shopID)
	if err != nil {
		respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shop)
}

func (h *Handler) handlePolicy(w http.ResponseWriter, r *http.Request, shopID int64) {
	var req struct {
		CommissionPercent *float64 `json:"commission_percent"`
		FixedFeePerUnit   *float64 `json:"fixed_fee_per_unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.CommissionPercent == nil || req.FixedFeePerUnit == nil {
		http.Error(w, "commission_percent and fixed_fee_per_unit are required", http.StatusBadRequest)
		return
	}
	policy := reconciliation.Policy{CommissionPercent: *req.CommissionPercent, FixedFeePerUnit: *req.FixedFeePerUnit}
	shop, err := h.shops.UpdatePolicy(r.Context(), shopID, policy)
	if err != nil {
		respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shop)
	h.logAudit(r, shopID, "shop.policy.update", map[string]any{
		"commission_percent": policy.CommissionPercent,
		"fixed_fee_per_unit": policy.FixedFeePerUnit,
	})
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request, shopID int64) {
	if h.syncer == nil {
		http.Error(w, "order sync not configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	from, to, err := dayRange(req.From, req.To, h.clock.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.syncer.SyncOrders(r.Context(), shopID, from, to)
	if err != nil {
		respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
	h.logAudit(r, shopID, "orders.sync", map[string]any{
		"from":    from.Format(dayLayout),
		"to":      to.AddDate(0, 0, -1).Format(dayLayout),
		"fetched": result.Fetched,
		"stored":  result.Stored,
		"skipped": result.Skipped,
	})
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request, shopID int64) {
	if h.importer == nil {
		http.Error(w, "release import not configured", http.StatusServiceUnavailable)
		return
	}
	query := r.URL.Query()
	opts := reconapp.ImportOptions{
		OrderColumn:  query.Get("order_col"),
		AmountColumn: query.Get("amount_col"),
		BatchColumn:  query.Get("batch_col"),
		DateColumn:   query.Get("date_col"),
	}
	if raw := query.Get("delimiter"); raw != "" {
		delimiter, err := parseDelimiter(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Delimiter = delimiter
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBodyBytes)
	result, err := h.importer.Import(r.Context(), shopID, body, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
	h.logAudit(r, shopID, "releases.import", map[string]any{
		"order_col":  opts.OrderColumn,
		"amount_col": opts.AmountColumn,
		"accepted":   result.Accepted,
		"rejected":   len(result.Rejected),
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, shopID int64) {
	report, ok := h.buildReport(w, r, shopID)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, shopID int64, name string) {
	var format string
	switch name {
	case "export.csv":
		format = "csv"
	case "export.xlsx":
		format = "xlsx"
	case "export.pdf":
		format = "pdf"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	report, ok := h.buildReport(w, r, shopID)
	if !ok {
		return
	}

	started := time.Now()
	meta := ExportMeta{
		ShopName: h.shopName(r, shopID),
		Currency: h.currency,
		FromDay:  report.From.Format(dayLayout),
		ToDay:    report.To.AddDate(0, 0, -1).Format(dayLayout),
	}
	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case "csv":
		var buf bytes.Buffer
		err = WriteReportCSV(&buf, report)
		body, contentType = buf.Bytes(), contentTypeCSV
	case "xlsx":
		body, err = BuildReportXLSX(report, meta)
		contentType = contentTypeXLSX
	case "pdf":
		body, err = BuildReportPDF(report, meta)
		contentType = contentTypePDF
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		h.logger.Printf("recon export failed: shop=%d format=%s err=%v", shopID, format, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(started))

	filename := fmt.Sprintf("reconciliation_%d_%s_%s.%s", shopID, meta.FromDay, meta.ToDay, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) handleOrdersExport(w http.ResponseWriter, r *http.Request, shopID int64) {
	if h.items == nil {
		http.Error(w, "orders export not configured", http.StatusServiceUnavailable)
		return
	}
	from, to, err := dayRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), h.clock.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.shops.Get(r.Context(), shopID); err != nil {
		respondError(w, err)
		return
	}
	started := time.Now()
	records, err := h.items.ListExpected(r.Context(), shopID, from, to)
	if err != nil {
		respondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteOrdersCSV(&buf, records); err != nil {
		metrics.ObserveExport("orders_csv", metrics.ResultError, time.Since(started))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("orders_csv", metrics.ResultSuccess, time.Since(started))

	filename := fmt.Sprintf("orders_%d_%s_%s.csv", shopID, from.Format(dayLayout), to.AddDate(0, 0, -1).Format(dayLayout))
	w.Header().Set("Content-Type", contentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) buildReport(w http.ResponseWriter, r *http.Request, shopID int64) (*reconciliation.Report, bool) {
	from, to, err := dayRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), h.clock.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	report, err := h.reports.Build(r.Context(), shopID, from, to)
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return report, true
}

func (h *Handler) shopName(r *http.Request, shopID int64) string {
	shop, err := h.shops.Get(r.Context(), shopID)
	if err != nil || shop == nil {
		return reconciliation.Shop{ID: shopID}.DisplayName()
	}
	return shop.DisplayName()
}

func (h *Handler) logAudit(r *http.Request, shopID int64, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	if err := h.auditLogger.Log(r.Context(), audit.Entry{
		ShopID:       shopID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "shop",
		ResourceID:   strconv.FormatInt(shopID, 10),
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}); err != nil {
		h.logger.Printf("audit log failed: shop=%d action=%s err=%v", shopID, action, err)
	}
}

// dayRange parses an inclusive YYYY-MM-DD range into [from, to). Missing
// bounds default to the last defaultReportDays days ending today.
func dayRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	defaultFrom, defaultTo := reconapp.LookbackWindow(now, defaultReportDays)
	from, to := defaultFrom, defaultTo
	if fromRaw != "" {
		day, err := time.Parse(dayLayout, fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		from = day.UTC()
	}
	if toRaw != "" {
		day, err := time.Parse(dayLayout, toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		to = day.UTC().AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must not be before from")
	}
	return from, to, nil
}

func parseDelimiter(raw string) (rune, error) {
	switch raw {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(raw) != 1 {
		return 0, errors.New("delimiter must be a single character")
	}
	delimiter, _ := utf8.DecodeRuneInString(raw)
	if delimiter == '"' || delimiter == '\r' || delimiter == '\n' {
		return 0, errors.New("invalid delimiter")
	}
	return delimiter, nil
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconciliation.ErrShopNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, reconciliation.ErrInvalidShopID),
		errors.Is(err, reconciliation.ErrInvalidPolicy),
		errors.Is(err, reconciliation.ErrInvalidInput),
		errors.Is(err, reconciliation.ErrEmptyOrderID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			http.Error(w, "statement too large", http.StatusRequestEntityTooLarge)
			return
		}
		if reconapp.IsTransient(err) {
			http.Error(w, "marketplace unavailable", http.StatusBadGateway)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		h.logger.Printf("recon encode response failed: err=%v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Printf("recon write response failed: err=%v", err)
	}
}
