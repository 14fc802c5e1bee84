package notify

import "context"

// AlertMessage represents a review alert for one shop report.
type AlertMessage struct {
	ShopID        int64             `json:"shop_id"`
	ShopName      string            `json:"shop_name"`
	From          string            `json:"from"`
	To            string            `json:"to"`
	NeedsReview   int               `json:"needs_review"`
	AboveExpected int               `json:"above_expected"`
	Delta         string            `json:"delta"`
	ReportURL     string            `json:"report_url,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg AlertMessage) error
}
