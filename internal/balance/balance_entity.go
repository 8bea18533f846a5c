package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance is the per-user leave ledger row. GrantedDays and
// CarryoverDays are set by grant batches, ConsumedDays accumulates as
// applications complete. Remaining balance is always derived, never stored.
type UserBalance struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"companyId"`
	UserID        int64           `json:"userId"`
	GrantedDays   decimal.Decimal `json:"grantedDays"`
	CarryoverDays decimal.Decimal `json:"carryoverDays"`
	ConsumedDays  decimal.Decimal `json:"consumedDays"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (UserBalance) TableName() string {
	return "user_balances"
}

// Remaining is the balance available to consume.
func (b *UserBalance) Remaining() decimal.Decimal {
	return b.CarryoverDays.Add(b.GrantedDays).Sub(b.ConsumedDays)
}
