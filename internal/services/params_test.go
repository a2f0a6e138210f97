package services_test

import (
	"context"
	"testing"

	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

func TestParamsService(t *testing.T) {
	redisService, cfg := newTestRedis(t)
	params := services.NewParamsService(redisService, cfg)
	ctx := context.Background()

	if err := params.Load(ctx); err != nil {
		t.Fatalf("failed to load params: %v", err)
	}

	// Reset to the configured defaults so earlier runs cannot leak in,
	// and restore them again when this test finishes.
	defaults := models.GameParams{
		BettingDuration:     cfg.BettingDuration,
		LockedDuration:      cfg.LockedDuration,
		SpinDuration:        cfg.SpinDuration,
		ResultDuration:      cfg.ResultDuration,
		MaxBetReal:          cfg.MaxBetReal,
		MaxBetTrial:         cfg.MaxBetTrial,
		ProtectionThreshold: cfg.ProtectionThreshold,
	}
	if _, err := params.Update(ctx, defaults); err != nil {
		t.Fatalf("failed to reset params: %v", err)
	}
	t.Cleanup(func() {
		params.Update(context.Background(), defaults)
	})

	current := params.Get()
	if current.BettingDuration != cfg.BettingDuration {
		t.Errorf("betting duration = %d, want %d", current.BettingDuration, cfg.BettingDuration)
	}

	// Out-of-range updates are clamped, not rejected.
	applied, err := params.Update(ctx, models.GameParams{
		BettingDuration:     1,
		LockedDuration:      30,
		SpinDuration:        15,
		ResultDuration:      45,
		MaxBetReal:          50000,
		MaxBetTrial:         500000,
		ProtectionThreshold: 2.0,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if applied.BettingDuration != models.MinBettingDuration {
		t.Errorf("betting duration should clamp to %d, got %d",
			models.MinBettingDuration, applied.BettingDuration)
	}
	if applied.ProtectionThreshold != 1 {
		t.Errorf("protection threshold should clamp to 1, got %f", applied.ProtectionThreshold)
	}
	if applied.MaxBetReal != 50000 {
		t.Errorf("in-range max bet should persist as-is, got %d", applied.MaxBetReal)
	}

	if got := params.Get(); got != applied {
		t.Errorf("cache should match the applied params: %+v vs %+v", got, applied)
	}

	// A second service instance sees the persisted values after Load.
	other := services.NewParamsService(redisService, cfg)
	if err := other.Load(ctx); err != nil {
		t.Fatalf("failed to load params in second instance: %v", err)
	}
	if got := other.Get(); got != applied {
		t.Errorf("persisted params should survive reload: %+v vs %+v", got, applied)
	}
}
