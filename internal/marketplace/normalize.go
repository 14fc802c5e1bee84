package marketplace

import (
	"bytes"
	"encoding/json"
	"time"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

// OrderDetail is the subset of an order detail payload used for reconciliation.
type OrderDetail struct {
	OrderSN    string      `json:"order_sn"`
	CreateTime int64       `json:"create_time"`
	ItemList   []OrderItem `json:"item_list"`
}

// OrderItem is a line of an order detail payload. Zero values mean absent.
type OrderItem struct {
	ItemName               string  `json:"item_name"`
	ModelDiscountedPrice   float64 `json:"model_discounted_price"`
	ModelOriginalPrice     float64 `json:"model_original_price"`
	ItemPrice              float64 `json:"item_price"`
	ModelQuantityPurchased int     `json:"model_quantity_purchased"`
	OrderItemQty           int     `json:"order_item_qty"`
}

// UnitPrice returns the first non-zero of discounted, original and item price.
func (i OrderItem) UnitPrice() float64 {
	switch {
	case i.ModelDiscountedPrice != 0:
		return i.ModelDiscountedPrice
	case i.ModelOriginalPrice != 0:
		return i.ModelOriginalPrice
	default:
		return i.ItemPrice
	}
}

// Quantity returns the purchased quantity, falling back to 1.
func (i OrderItem) Quantity() int {
	switch {
	case i.ModelQuantityPurchased > 0:
		return i.ModelQuantityPurchased
	case i.OrderItemQty > 0:
		return i.OrderItemQty
	default:
		return 1
	}
}

// NormalizeOrder flattens an order detail into line items. A missing create
// time falls back to now.
func NormalizeOrder(shopID int64, detail OrderDetail, now time.Time) []reconciliation.OrderLineItem {
	created := now.UTC()
	if detail.CreateTime > 0 {
		created = time.Unix(detail.CreateTime, 0).UTC()
	}
	items := make([]reconciliation.OrderLineItem, 0, len(detail.ItemList))
	for _, item := range detail.ItemList {
		items = append(items, reconciliation.OrderLineItem{
			ShopID:      shopID,
			OrderID:     detail.OrderSN,
			ItemName:    item.ItemName,
			UnitPrice:   item.UnitPrice(),
			Quantity:    item.Quantity(),
			CreatedTime: created,
		})
	}
	return items
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// orderRef accepts either a bare order id or an object carrying order_sn.
type orderRef string

func (r *orderRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = orderRef(id)
		return nil
	}
	var obj struct {
		OrderSN string `json:"order_sn"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = orderRef(obj.OrderSN)
	return nil
}

type orderListBody struct {
	OrderList   []orderRef `json:"order_list"`
	OrderSNList []orderRef `json:"order_sn_list"`
	More        bool       `json:"more"`
	NextCursor  string     `json:"next_cursor"`
}

type orderListResponse struct {
	Response *orderListBody `json:"response"`
	Data     *orderListBody `json:"data"`
}

func (r orderListResponse) body() *orderListBody {
	if r.Response != nil && (len(r.Response.OrderSNList) > 0 || len(r.Response.OrderList) > 0) {
		return r.Response
	}
	if r.Data != nil {
		return r.Data
	}
	return r.Response
}

func (r orderListResponse) orderIDs() []string {
	body := r.body()
	if body == nil {
		return nil
	}
	refs := body.OrderSNList
	if len(refs) == 0 {
		refs = body.OrderList
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != "" {
			ids = append(ids, string(ref))
		}
	}
	return ids
}

func (r orderListResponse) next() (string, bool) {
	body := r.body()
	if body == nil {
		return "", false
	}
	return body.NextCursor, body.More
}

type orderDetailBody struct {
	OrderList []OrderDetail `json:"order_list"`
}

type orderDetailResponse struct {
	Response *orderDetailBody `json:"response"`
	Data     *orderDetailBody `json:"data"`
}

func (r orderDetailResponse) orders() []OrderDetail {
	if r.Response != nil && len(r.Response.OrderList) > 0 {
		return r.Response.OrderList
	}
	if r.Data != nil {
		return r.Data.OrderList
	}
	return nil
}
