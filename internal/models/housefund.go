package models

// House fund transaction reasons.
const (
	HouseReasonSettlement = "round_settlement"
	HouseReasonDeposit    = "admin_deposit"
	HouseReasonWithdraw   = "admin_withdraw"
)

// HouseFund is the singleton operator risk reserve, in minor units
// (1000 minor units = $1). The balance is only ever changed through the
// fund adjust script, never written directly.
type HouseFund struct {
	Balance   int64 `json:"balance" redis:"balance"`
	UpdatedAt int64 `json:"updated_at" redis:"updated_at"`
}

type HouseTransaction struct {
	ID           string `json:"id" redis:"id"`
	Delta        int64  `json:"delta" redis:"delta"`
	Reason       string `json:"reason" redis:"reason"`
	Metadata     string `json:"metadata,omitempty" redis:"metadata"`
	BalanceAfter int64  `json:"balance_after" redis:"balance_after"`
	CreatedAt    int64  `json:"created_at" redis:"created_at"`
}
