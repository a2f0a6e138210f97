package models

type Phase string

const (
	PhaseBetting  Phase = "betting"
	PhaseLocked   Phase = "locked"
	PhaseSpinning Phase = "spinning"
	PhaseResult   Phase = "result"
)

type BetType string

const (
	BetStraight BetType = "straight"
	BetRed      BetType = "red"
	BetBlack    BetType = "black"
	BetEven     BetType = "even"
	BetOdd      BetType = "odd"
	BetLow      BetType = "low"  // 1-18
	BetHigh     BetType = "high" // 19-36
	BetDozen1   BetType = "dozen1"
	BetDozen2   BetType = "dozen2"
	BetDozen3   BetType = "dozen3"
	BetColumn1  BetType = "column1"
	BetColumn2  BetType = "column2"
	BetColumn3  BetType = "column3"
)

func (t BetType) Valid() bool {
	switch t {
	case BetStraight, BetRed, BetBlack, BetEven, BetOdd, BetLow, BetHigh,
		BetDozen1, BetDozen2, BetDozen3, BetColumn1, BetColumn2, BetColumn3:
		return true
	}
	return false
}

// GameRound is one betting->locked->spinning->result cycle. Phase end
// timestamps are absolute and fixed at round creation from the params
// snapshot, so later param changes only affect subsequent rounds.
// WinningOutcome stays -1 until the locked->spinning transition commits it.
type GameRound struct {
	RoundID          string `json:"round_id" redis:"round_id"`
	Phase            Phase  `json:"phase" redis:"phase"`
	BettingEndsAt    int64  `json:"betting_ends_at" redis:"betting_ends_at"`
	LockedEndsAt     int64  `json:"locked_ends_at" redis:"locked_ends_at"`
	SpinEndsAt       int64  `json:"spin_ends_at" redis:"spin_ends_at"`
	ResultEndsAt     int64  `json:"result_ends_at" redis:"result_ends_at"`
	WinningOutcome   int    `json:"winning_outcome" redis:"winning_outcome"`
	SecondaryOutcome int    `json:"secondary_outcome" redis:"secondary_outcome"`
	OutcomeHash      string `json:"outcome_hash,omitempty" redis:"outcome_hash"`
	Nonce            int64  `json:"nonce" redis:"nonce"`
	CreatedAt        int64  `json:"created_at" redis:"created_at"`

	// Settlement summary, written once by the settling observer.
	TotalStaked int64   `json:"total_staked" redis:"total_staked"`
	TotalPaid   int64   `json:"total_paid" redis:"total_paid"`
	PayoutScale float64 `json:"payout_scale" redis:"payout_scale"`
	BetCount    int     `json:"bet_count" redis:"bet_count"`
}

// Bet is a single wager inside a round. The stake is debited from the
// ledger at placement time, so Amount is already reserved money.
// Trial bets stake fermented mangos and never touch the house fund.
type Bet struct {
	ID           string   `json:"id" redis:"id"`
	RoundID      string   `json:"round_id" redis:"round_id"`
	Username     string   `json:"username" redis:"username"`
	Type         BetType  `json:"type" redis:"type"`
	Amount       int64    `json:"amount" redis:"amount"`
	TargetNumber int      `json:"target_number" redis:"target_number"`
	Currency     Currency `json:"currency" redis:"currency"`
	PlacedAt     int64    `json:"placed_at" redis:"placed_at"`

	// Filled at settlement.
	Win    bool  `json:"win" redis:"win"`
	Payout int64 `json:"payout" redis:"payout"`
}
