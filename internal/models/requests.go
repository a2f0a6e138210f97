package models

import "fmt"

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,alphanum"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PlaceBetRequest struct {
	Type         BetType `json:"type" binding:"required"`
	Amount       int64   `json:"amount" binding:"required"`
	TargetNumber int     `json:"target_number"`
	Trial        bool    `json:"trial"`
}

// Validate covers shape only; balance and phase checks happen in the
// round engine where they can be made atomically.
func (r *PlaceBetRequest) Validate() error {
	if r.Amount < 1 {
		return fmt.Errorf("bet amount must be at least 1")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("invalid bet type: %s", r.Type)
	}
	if r.Type == BetStraight && (r.TargetNumber < 0 || r.TargetNumber > 36) {
		return fmt.Errorf("target number must be between 0 and 36")
	}
	return nil
}

func (r *PlaceBetRequest) StakeCurrency() Currency {
	if r.Trial {
		return CurrencyFermented
	}
	return CurrencyMango
}

type ConvertJuiceRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

type WithdrawRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

type TopUpRequest struct {
	PackageID string `json:"package_id" binding:"required"`
}

type HouseAmountRequest struct {
	USD int64 `json:"usd" binding:"required,min=1"`
}

type VerifyOutcomeRequest struct {
	ServerSeed string `json:"server_seed" binding:"required"`
	RoundID    string `json:"round_id" binding:"required"`
	Nonce      int64  `json:"nonce"`
}
