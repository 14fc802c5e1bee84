package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

const (
	orderListPath   = "/api/v2/order/get_order_list"
	orderDetailPath = "/api/v2/order/get_order_detail"

	// DefaultPageSize is the order list page size.
	DefaultPageSize = 50
	// MaxDetailBatch is the largest order id batch accepted by the detail endpoint.
	MaxDetailBatch = 50
	// MaxWindow is the longest create-time range accepted by the list endpoint.
	MaxWindow = 15 * 24 * time.Hour

	maxPages = 1000
)

// APIError is returned for non-2xx responses and for error envelopes.
type APIError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("marketplace: http %d: %s: %s", e.StatusCode, e.Code, e.Body)
	}
	return fmt.Sprintf("marketplace: http %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client is a minimal marketplace order API client.
type Client struct {
	baseURL   string
	partnerID int64
	pageSize  int
	client    *http.Client
	limiter   *time.Ticker
	now       func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the HTTP client timeout. A client passed through
// WithHTTPClient is copied, never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			copied := *c.client
			copied.Timeout = timeout
			c.client = &copied
		}
	}
}

// WithPageSize overrides the order list page size.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithRateLimit spaces requests to at most perMinute calls.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = time.NewTicker(time.Minute / time.Duration(perMinute))
		}
	}
}

// WithClock overrides the time source used for request timestamps and
// missing create times.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a marketplace client.
func NewClient(baseURL string, partnerID int64, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("marketplace: empty base url")
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		partnerID: partnerID,
		pageSize:  DefaultPageSize,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close stops the rate limiter.
func (c *Client) Close() {
	if c != nil && c.limiter != nil {
		c.limiter.Stop()
	}
}

// ListOrderItems returns the normalized line items of orders created in [from, to).
func (c *Client) ListOrderItems(ctx context.Context, shop reconciliation.Shop, from, to time.Time) ([]reconciliation.OrderLineItem, error) {
	orderIDs, err := c.ListOrderIDs(ctx, shop, from, to)
	if err != nil {
		return nil, err
	}
	var items []reconciliation.OrderLineItem
	for start := 0; start < len(orderIDs); start += MaxDetailBatch {
		end := start + MaxDetailBatch
		if end > len(orderIDs) {
			end = len(orderIDs)
		}
		details, err := c.GetOrderDetails(ctx, shop, orderIDs[start:end])
		if err != nil {
			return nil, err
		}
		now := c.now()
		for _, detail := range details {
			items = append(items, NormalizeOrder(shop.ID, detail, now)...)
		}
	}
	return items, nil
}

// ListOrderIDs pages through the order list, splitting the range into
// windows the endpoint accepts.
func (c *Client) ListOrderIDs(ctx context.Context, shop reconciliation.Shop, from, to time.Time) ([]string, error) {
	if shop.ID <= 0 {
		return nil, reconciliation.ErrInvalidShopID
	}
	if !to.After(from) {
		return nil, nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for windowStart := from; windowStart.Before(to); windowStart = windowStart.Add(MaxWindow) {
		windowEnd := windowStart.Add(MaxWindow)
		if windowEnd.After(to) {
			windowEnd = to
		}
		cursor := ""
		for page := 0; page < maxPages; page++ {
			params := url.Values{}
			params.Set("time_range_field", "create_time")
			params.Set("time_from", strconv.FormatInt(windowStart.Unix(), 10))
			params.Set("time_to", strconv.FormatInt(windowEnd.Unix()-1, 10))
			params.Set("page_size", strconv.Itoa(c.pageSize))
			if cursor != "" {
				params.Set("cursor", cursor)
			}
			var resp orderListResponse
			if err := c.doJSON(ctx, http.MethodGet, orderListPath, shop, params, nil, &resp); err != nil {
				return nil, err
			}
			for _, id := range resp.orderIDs() {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
			next, more := resp.next()
			if !more || next == "" || next == cursor {
				break
			}
			cursor = next
		}
	}
	return ids, nil
}

// GetOrderDetails fetches order details for at most MaxDetailBatch ids.
func (c *Client) GetOrderDetails(ctx context.Context, shop reconciliation.Shop, orderIDs []string) ([]OrderDetail, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	if len(orderIDs) > MaxDetailBatch {
		return nil, fmt.Errorf("marketplace: detail batch of %d exceeds %d", len(orderIDs), MaxDetailBatch)
	}
	body := map[string]any{"order_sn_list": orderIDs}
	var resp orderDetailResponse
	if err := c.doJSON(ctx, http.MethodPost, orderDetailPath, shop, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.orders(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, shop reconciliation.Shop, params url.Values, body any, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("partner_id", strconv.FormatInt(c.partnerID, 10))
	params.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	params.Set("shop_id", strconv.FormatInt(shop.ID, 10))
	if shop.AccessToken != "" {
		params.Set("access_token", shop.AccessToken)
	}

	reqBody := bytes.NewReader(nil)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Code: envelope.Error, Body: envelope.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.limiter.C:
		return nil
	}
}
