package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

type fakeMarketplace struct {
	mu           sync.Mutex
	orders       []string
	detailCalls  [][]string
	listRequests []string
}

func (f *fakeMarketplace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.URL.Query().Get("access_token") != "tok" || r.URL.Query().Get("shop_id") != "10" || r.URL.Query().Get("partner_id") != "77" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	switch r.URL.Path {
	case orderListPath:
		cursor := r.URL.Query().Get("cursor")
		f.listRequests = append(f.listRequests, cursor)
		start := 0
		if cursor != "" {
			fmt.Sscanf(cursor, "%d", &start)
		}
		end := start + 50
		more := true
		if end >= len(f.orders) {
			end = len(f.orders)
			more = false
		}
		refs := make([]map[string]string, 0, end-start)
		for _, id := range f.orders[start:end] {
			refs = append(refs, map[string]string{"order_sn": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": "",
			"response": map[string]any{
				"order_list":  refs,
				"more":        more,
				"next_cursor": fmt.Sprintf("%d", end),
			},
		})
	case orderDetailPath:
		var body struct {
			OrderSNList []string `json:"order_sn_list"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.detailCalls = append(f.detailCalls, body.OrderSNList)
		orders := make([]map[string]any, 0, len(body.OrderSNList))
		for _, id := range body.OrderSNList {
			orders = append(orders, map[string]any{
				"order_sn":    id,
				"create_time": 1772323200,
				"item_list": []map[string]any{
					{"item_name": "kit", "model_discounted_price": 0, "model_original_price": 50.0, "model_quantity_purchased": 2},
				},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": map[string]any{"order_list": orders}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestClientListOrderItemsPaginatesAndBatches(t *testing.T) {
	fake := &fakeMarketplace{}
	for i := 0; i < 60; i++ {
		fake.orders = append(fake.orders, fmt.Sprintf("ORD%03d", i))
	}
	server := httptest.NewServer(fake)
	defer server.Close()

	client, err := NewClient(server.URL, 77)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	shop := reconciliation.Shop{ID: 10, AccessToken: "tok"}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items, err := client.ListOrderItems(context.Background(), shop, from, from.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list order items: %v", err)
	}
	if len(items) != 60 {
		t.Fatalf("expected 60 items, got %d", len(items))
	}
	if len(fake.listRequests) != 2 || fake.listRequests[1] != "50" {
		t.Fatalf("expected two list pages, got %v", fake.listRequests)
	}
	if len(fake.detailCalls) != 2 || len(fake.detailCalls[0]) != 50 || len(fake.detailCalls[1]) != 10 {
		t.Fatalf("unexpected detail batches: %d", len(fake.detailCalls))
	}
	first := items[0]
	if first.ShopID != 10 || first.OrderID != "ORD000" || first.UnitPrice != 50 || first.Quantity != 2 {
		t.Fatalf("unexpected item: %+v", first)
	}
	if !first.CreatedTime.Equal(time.Unix(1772323200, 0)) {
		t.Fatalf("unexpected created time: %s", first.CreatedTime)
	}
}

func TestClientSplitsLongRanges(t *testing.T) {
	fake := &fakeMarketplace{}
	server := httptest.NewServer(fake)
	defer server.Close()

	client, err := NewClient(server.URL, 77)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := client.ListOrderIDs(context.Background(), reconciliation.Shop{ID: 10, AccessToken: "tok"}, from, from.AddDate(0, 0, 31)); err != nil {
		t.Fatalf("list order ids: %v", err)
	}
	if len(fake.listRequests) != 3 {
		t.Fatalf("expected 3 windows for 31 days, got %d", len(fake.listRequests))
	}
}

func TestClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("busy"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 77)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.ListOrderIDs(context.Background(), reconciliation.Shop{ID: 10}, time.Unix(0, 0), time.Unix(3600, 0))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Body != "busy" || !apiErr.Temporary() {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestClientErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"error_auth","message":"invalid access_token"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 77)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetOrderDetails(context.Background(), reconciliation.Shop{ID: 10}, []string{"A"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "error_auth" || apiErr.Temporary() {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestClientRejectsOversizedBatch(t *testing.T) {
	client, err := NewClient("http://example.invalid", 1)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ids := make([]string, MaxDetailBatch+1)
	if _, err := client.GetOrderDetails(context.Background(), reconciliation.Shop{ID: 1}, ids); err == nil {
		t.Fatalf("expected batch size error")
	}
}

func TestNewClientEmptyBaseURL(t *testing.T) {
	if _, err := NewClient(" ", 1); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestWithTimeoutKeepsCallerClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c, err := NewClient("http://marketplace.local", 1, WithHTTPClient(shared), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if shared.Timeout != time.Minute {
		t.Fatalf("caller client timeout changed to %s", shared.Timeout)
	}
	if c.client == shared || c.client.Timeout != 5*time.Second {
		t.Fatalf("client timeout not applied: %s", c.client.Timeout)
	}

	c, err = NewClient("http://marketplace.local", 1, WithTimeout(0))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.client.Timeout != 30*time.Second {
		t.Fatalf("zero timeout should keep default, got %s", c.client.Timeout)
	}
}
