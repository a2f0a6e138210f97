package models

// GameParams is the operator-tunable round configuration. Durations are
// seconds; bet caps are in the staked currency's base unit.
type GameParams struct {
	BettingDuration     int64   `json:"betting_duration"`
	LockedDuration      int64   `json:"locked_duration"`
	SpinDuration        int64   `json:"spin_duration"`
	ResultDuration      int64   `json:"result_duration"`
	MaxBetReal          int64   `json:"max_bet_real"`
	MaxBetTrial         int64   `json:"max_bet_trial"`
	ProtectionThreshold float64 `json:"protection_threshold"`
}

// Validation ranges for admin updates. Values outside a range are
// clamped at write time, not rejected.
const (
	MinBettingDuration = 30
	MaxBettingDuration = 600
	MinLockedDuration  = 5
	MaxLockedDuration  = 120
	MinSpinDuration    = 5
	MaxSpinDuration    = 60
	MinResultDuration  = 10
	MaxResultDuration  = 120

	MinMaxBetReal  = 1_000
	MaxMaxBetReal  = 10_000_000
	MinMaxBetTrial = 10_000
	MaxMaxBetTrial = 100_000_000
)

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp forces every field into its validation range.
func (p GameParams) Clamp() GameParams {
	p.BettingDuration = clampInt64(p.BettingDuration, MinBettingDuration, MaxBettingDuration)
	p.LockedDuration = clampInt64(p.LockedDuration, MinLockedDuration, MaxLockedDuration)
	p.SpinDuration = clampInt64(p.SpinDuration, MinSpinDuration, MaxSpinDuration)
	p.ResultDuration = clampInt64(p.ResultDuration, MinResultDuration, MaxResultDuration)
	p.MaxBetReal = clampInt64(p.MaxBetReal, MinMaxBetReal, MaxMaxBetReal)
	p.MaxBetTrial = clampInt64(p.MaxBetTrial, MinMaxBetTrial, MaxMaxBetTrial)

	if p.ProtectionThreshold < 0 {
		p.ProtectionThreshold = 0
	}
	if p.ProtectionThreshold > 1 {
		p.ProtectionThreshold = 1
	}

	return p
}
