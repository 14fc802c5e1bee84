package reconciliation

import (
	"strconv"
	"time"
)

// Shop is a connected seller account with its current policy.
type Shop struct {
	ID          int64     `json:"shop_id"`
	Alias       string    `json:"alias"`
	TaxID       string    `json:"tax_id"`
	AccessToken string    `json:"-"`
	Policy      Policy    `json:"policy"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName returns the alias or "shop <id>".
func (s Shop) DisplayName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return "shop " + strconv.FormatInt(s.ID, 10)
}
