package models_test

import (
	"testing"

	"mango-roulette-backend/internal/models"
)

func TestBetMultiplier(t *testing.T) {
	cases := []struct {
		name      string
		betType   models.BetType
		target    int
		outcome   int
		secondary int
		want      int64
	}{
		{"straight hit", models.BetStraight, 17, 17, 4, 36},
		{"straight miss", models.BetStraight, 17, 18, 4, 0},
		{"straight on secondary", models.BetStraight, 4, 17, 4, 18},
		{"straight on both pockets", models.BetStraight, 17, 17, 17, 36},
		{"straight on zero", models.BetStraight, 0, 0, 12, 36},
		{"red hit", models.BetRed, 0, 32, 5, 2},
		{"red miss on black", models.BetRed, 0, 33, 5, 0},
		{"black hit", models.BetBlack, 0, 33, 5, 2},
		{"even hit", models.BetEven, 0, 14, 5, 2},
		{"odd hit", models.BetOdd, 0, 15, 5, 2},
		{"low hit", models.BetLow, 0, 18, 5, 2},
		{"high hit", models.BetHigh, 0, 19, 5, 2},
		{"low miss on 19", models.BetLow, 0, 19, 5, 0},
		{"dozen1 hit", models.BetDozen1, 0, 12, 5, 3},
		{"dozen2 hit", models.BetDozen2, 0, 13, 5, 3},
		{"dozen3 hit", models.BetDozen3, 0, 25, 5, 3},
		{"dozen2 miss", models.BetDozen2, 0, 25, 5, 0},
		{"column1 hit", models.BetColumn1, 0, 4, 5, 3},
		{"column2 hit", models.BetColumn2, 0, 5, 5, 3},
		{"column3 hit", models.BetColumn3, 0, 6, 5, 3},
		{"column1 miss", models.BetColumn1, 0, 5, 5, 0},
	}

	for _, tc := range cases {
		got := models.BetMultiplier(tc.betType, tc.target, tc.outcome, tc.secondary)
		if got != tc.want {
			t.Errorf("%s: BetMultiplier(%s, %d, %d, %d) = %d, want %d",
				tc.name, tc.betType, tc.target, tc.outcome, tc.secondary, got, tc.want)
		}
	}
}

func TestBetMultiplierZeroPocket(t *testing.T) {
	// Zero is green: every outside bet loses when it lands.
	outsideBets := []models.BetType{
		models.BetRed, models.BetBlack, models.BetEven, models.BetOdd,
		models.BetLow, models.BetHigh,
		models.BetDozen1, models.BetDozen2, models.BetDozen3,
		models.BetColumn1, models.BetColumn2, models.BetColumn3,
	}

	for _, betType := range outsideBets {
		if got := models.BetMultiplier(betType, 0, 0, 5); got != 0 {
			t.Errorf("%s on zero pocket should lose, got multiplier %d", betType, got)
		}
	}
}

func TestIsRed(t *testing.T) {
	if !models.IsRed(1) {
		t.Error("1 should be red")
	}
	if models.IsRed(2) {
		t.Error("2 should be black")
	}
	if models.IsRed(0) {
		t.Error("0 should not be red")
	}
}

func TestGameParamsClamp(t *testing.T) {
	params := models.GameParams{
		BettingDuration:     5,
		LockedDuration:      1000,
		SpinDuration:        15,
		ResultDuration:      0,
		MaxBetReal:          1,
		MaxBetTrial:         1_000_000_000,
		ProtectionThreshold: 1.5,
	}

	clamped := params.Clamp()

	if clamped.BettingDuration != models.MinBettingDuration {
		t.Errorf("betting duration should clamp up to %d, got %d",
			models.MinBettingDuration, clamped.BettingDuration)
	}
	if clamped.LockedDuration != models.MaxLockedDuration {
		t.Errorf("locked duration should clamp down to %d, got %d",
			models.MaxLockedDuration, clamped.LockedDuration)
	}
	if clamped.SpinDuration != 15 {
		t.Errorf("in-range spin duration should be untouched, got %d", clamped.SpinDuration)
	}
	if clamped.ResultDuration != models.MinResultDuration {
		t.Errorf("result duration should clamp up to %d, got %d",
			models.MinResultDuration, clamped.ResultDuration)
	}
	if clamped.MaxBetReal != models.MinMaxBetReal {
		t.Errorf("max real bet should clamp up to %d, got %d",
			models.MinMaxBetReal, clamped.MaxBetReal)
	}
	if clamped.MaxBetTrial != models.MaxMaxBetTrial {
		t.Errorf("max trial bet should clamp down to %d, got %d",
			models.MaxMaxBetTrial, clamped.MaxBetTrial)
	}
	if clamped.ProtectionThreshold != 1 {
		t.Errorf("protection threshold should clamp to 1, got %f", clamped.ProtectionThreshold)
	}

	if neg := (models.GameParams{ProtectionThreshold: -0.5}).Clamp(); neg.ProtectionThreshold != 0 {
		t.Errorf("negative protection threshold should clamp to 0, got %f", neg.ProtectionThreshold)
	}
}

func TestPlaceBetRequestValidate(t *testing.T) {
	valid := &models.PlaceBetRequest{Type: models.BetRed, Amount: 100}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid bet should pass validation: %v", err)
	}

	straight := &models.PlaceBetRequest{Type: models.BetStraight, Amount: 100, TargetNumber: 36}
	if err := straight.Validate(); err != nil {
		t.Errorf("straight bet on 36 should pass validation: %v", err)
	}

	invalid := []*models.PlaceBetRequest{
		{Type: models.BetRed, Amount: 0},
		{Type: "corner", Amount: 100},
		{Type: models.BetStraight, Amount: 100, TargetNumber: 37},
		{Type: models.BetStraight, Amount: 100, TargetNumber: -1},
	}

	for i, req := range invalid {
		if err := req.Validate(); err == nil {
			t.Errorf("case %d should fail validation", i)
		}
	}
}

func TestStakeCurrency(t *testing.T) {
	real := &models.PlaceBetRequest{Type: models.BetRed, Amount: 100}
	if real.StakeCurrency() != models.CurrencyMango {
		t.Errorf("real bets stake mangos, got %s", real.StakeCurrency())
	}

	trial := &models.PlaceBetRequest{Type: models.BetRed, Amount: 100, Trial: true}
	if trial.StakeCurrency() != models.CurrencyFermented {
		t.Errorf("trial bets stake fermented mangos, got %s", trial.StakeCurrency())
	}
}

func TestAccountBalance(t *testing.T) {
	account := models.NewAccount("tester")

	if account.Username != "tester" {
		t.Errorf("unexpected username: %s", account.Username)
	}
	if account.Mangos != 0 || account.MangoJuice != 0 ||
		account.FermentedMangos != 0 || account.ExpiredJuice != 0 {
		t.Error("new accounts start with zero balances")
	}

	account.MangoJuice = 250
	if account.Balance(models.CurrencyJuice) != 250 {
		t.Errorf("Balance(mango_juice) = %d, want 250", account.Balance(models.CurrencyJuice))
	}
	if account.Balance(models.CurrencyMango) != 0 {
		t.Errorf("Balance(mangos) = %d, want 0", account.Balance(models.CurrencyMango))
	}
}

func TestGenerateIDs(t *testing.T) {
	if models.GenerateRoundID() == "" {
		t.Error("round ID should not be empty")
	}
	if models.GenerateBetID() == models.GenerateBetID() {
		t.Error("bet IDs should be unique")
	}
	if models.GenerateEntryID() == "" {
		t.Error("entry ID should not be empty")
	}
	if models.GenerateHouseTxID() == "" {
		t.Error("house tx ID should not be empty")
	}
}
