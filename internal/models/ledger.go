package models

// Ledger entry reasons. Every balance mutation carries one of these so
// the append-only log can be reconciled per account.
const (
	ReasonBetPlace      = "bet_place"
	ReasonBetWin        = "bet_win"
	ReasonBetRefund     = "bet_refund"
	ReasonConvertDebit  = "convert_debit"
	ReasonConvertCredit = "convert_credit"
	ReasonDailyReward   = "daily_reward"
	ReasonTopUp         = "topup"
	ReasonWithdraw      = "withdraw"
	ReasonAdminAdjust   = "admin_adjust"
)

// LedgerEntry is an immutable record of one balance change. Entries are
// write-once; nothing in the system updates or deletes them.
type LedgerEntry struct {
	ID           string   `json:"id" redis:"id"`
	Username     string   `json:"username" redis:"username"`
	Currency     Currency `json:"currency" redis:"currency"`
	Delta        int64    `json:"delta" redis:"delta"`
	BalanceAfter int64    `json:"balance_after" redis:"balance_after"`
	Reason       string   `json:"reason" redis:"reason"`
	Details      string   `json:"details,omitempty" redis:"details"`
	CreatedAt    int64    `json:"created_at" redis:"created_at"`
}
