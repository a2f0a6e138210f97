package models

import "time"

type Currency string

const (
	CurrencyMango     Currency = "mangos"
	CurrencyJuice     Currency = "mango_juice"
	CurrencyFermented Currency = "fermented_mangos"
	CurrencyExpired   Currency = "expired_juice"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyMango, CurrencyJuice, CurrencyFermented, CurrencyExpired:
		return true
	}
	return false
}

// Account holds the four per-user balances plus daily-claim metadata.
// The JSON field names double as the balance keys the Redis scripts
// index into, so they must match the Currency constants exactly.
type Account struct {
	Username        string `json:"username" redis:"username"`
	Mangos          int64  `json:"mangos" redis:"mangos"`
	MangoJuice      int64  `json:"mango_juice" redis:"mango_juice"`
	FermentedMangos int64  `json:"fermented_mangos" redis:"fermented_mangos"`
	ExpiredJuice    int64  `json:"expired_juice" redis:"expired_juice"`

	LastDailyClaimAt int64 `json:"last_daily_claim_at" redis:"last_daily_claim_at"`
	DailyStreak      int   `json:"daily_streak" redis:"daily_streak"`

	CreatedAt int64 `json:"created_at" redis:"created_at"`
	UpdatedAt int64 `json:"updated_at" redis:"updated_at"`
}

func NewAccount(username string) *Account {
	now := time.Now().Unix()
	return &Account{
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Account) Balance(c Currency) int64 {
	switch c {
	case CurrencyMango:
		return a.Mangos
	case CurrencyJuice:
		return a.MangoJuice
	case CurrencyFermented:
		return a.FermentedMangos
	case CurrencyExpired:
		return a.ExpiredJuice
	}
	return 0
}
