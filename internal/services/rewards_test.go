package services_test

import (
	"context"
	"errors"
	"testing"

	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

func TestDailyClaimTimeline(t *testing.T) {
	redisService, cfg := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	rewards := services.NewRewardScheduler(redisService, ledger, cfg)
	ctx := context.Background()
	username := testUsername(t, redisService, "daily")

	base := cfg.DailyRewardBase
	t0 := int64(1_700_000_000)

	// Fresh account: claimable immediately.
	canClaim, _, err := rewards.CanClaimAt(ctx, username, t0)
	if err != nil {
		t.Fatalf("CanClaimAt failed: %v", err)
	}
	if !canClaim {
		t.Fatal("fresh account should be able to claim")
	}

	first, err := rewards.ClaimAt(ctx, username, t0)
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if first.Streak != 1 || first.BonusPercent != 0 || first.Reward != base {
		t.Errorf("first claim should be streak=1 bonus=0 reward=%d, got %+v", base, first)
	}
	if first.NewBalance != base {
		t.Errorf("fermented balance should equal reward, got %d", first.NewBalance)
	}

	// One hour later: still inside the 24h window.
	_, err = rewards.ClaimAt(ctx, username, t0+3600)
	var claimed *services.AlreadyClaimedError
	if !errors.As(err, &claimed) {
		t.Fatalf("early claim should return AlreadyClaimedError, got %v", err)
	}
	if claimed.RetryAfterSeconds != 23*3600 {
		t.Errorf("retry-after should be 23h, got %ds", claimed.RetryAfterSeconds)
	}

	canClaim, retryAfter, err := rewards.CanClaimAt(ctx, username, t0+3600)
	if err != nil {
		t.Fatalf("CanClaimAt failed: %v", err)
	}
	if canClaim || retryAfter != 23*3600 {
		t.Errorf("status should report closed window with 23h left, got %v/%d",
			canClaim, retryAfter)
	}

	// 25 hours later: window open, previous claim under 48h old, so the
	// streak continues and earns a 10% bonus.
	second, err := rewards.ClaimAt(ctx, username, t0+25*3600)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if second.Streak != 2 || second.BonusPercent != 10 {
		t.Errorf("second claim should be streak=2 bonus=10, got %+v", second)
	}
	if second.Reward != base*110/100 {
		t.Errorf("second reward should be %d, got %d", base*110/100, second.Reward)
	}

	// 60 hours after the second claim: the streak window lapsed, streak
	// resets to 1.
	third, err := rewards.ClaimAt(ctx, username, t0+25*3600+60*3600)
	if err != nil {
		t.Fatalf("third claim failed: %v", err)
	}
	if third.Streak != 1 || third.BonusPercent != 0 || third.Reward != base {
		t.Errorf("lapsed streak should reset to 1, got %+v", third)
	}
}

func TestDailyClaimBonusCap(t *testing.T) {
	redisService, cfg := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	rewards := services.NewRewardScheduler(redisService, ledger, cfg)
	ctx := context.Background()
	username := testUsername(t, redisService, "dailycap")

	base := cfg.DailyRewardBase
	now := int64(1_700_000_000)

	// Ten consecutive daily claims: the bonus grows 10% per day but
	// caps at 60%.
	for day := 1; day <= 10; day++ {
		result, err := rewards.ClaimAt(ctx, username, now)
		if err != nil {
			t.Fatalf("claim on day %d failed: %v", day, err)
		}

		wantBonus := int64(day-1) * 10
		if wantBonus > 60 {
			wantBonus = 60
		}

		if result.Streak != day {
			t.Errorf("day %d: streak = %d", day, result.Streak)
		}
		if result.BonusPercent != wantBonus {
			t.Errorf("day %d: bonus = %d%%, want %d%%", day, result.BonusPercent, wantBonus)
		}
		if result.Reward != base*(100+wantBonus)/100 {
			t.Errorf("day %d: reward = %d, want %d", day, result.Reward, base*(100+wantBonus)/100)
		}

		now += 24 * 3600
	}
}

func TestDailyClaimLedgerEntry(t *testing.T) {
	redisService, cfg := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	rewards := services.NewRewardScheduler(redisService, ledger, cfg)
	ctx := context.Background()
	username := testUsername(t, redisService, "dailylog")

	result, err := rewards.ClaimAt(ctx, username, 1_700_000_000)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	entries, err := ledger.GetEntries(ctx, username, 10)
	if err != nil {
		t.Fatalf("failed to get entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Reason != models.ReasonDailyReward {
		t.Errorf("entry reason = %s, want %s", entry.Reason, models.ReasonDailyReward)
	}
	if entry.Currency != models.CurrencyFermented {
		t.Errorf("rewards are paid in fermented mangos, got %s", entry.Currency)
	}
	if entry.Delta != result.Reward || entry.BalanceAfter != result.NewBalance {
		t.Errorf("entry should mirror the claim: %+v vs %+v", entry, result)
	}
}
