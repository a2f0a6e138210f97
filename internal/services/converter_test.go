package services_test

import (
	"context"
	"errors"
	"testing"

	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

func TestExpiredToJuice(t *testing.T) {
	redisService, cfg := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	converter := services.NewConverter(ledger, cfg)
	ctx := context.Background()
	username := testUsername(t, redisService, "convexp")

	// 99 expired juice is one short of the batch: the conversion must
	// fail with progress, and leave the balance intact.
	if _, err := ledger.Adjust(ctx, username, models.CurrencyExpired, 99,
		models.ReasonAdminAdjust, "seed"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := converter.ExpiredToJuice(ctx, username)
	var short *services.InsufficientFundsError
	if !errors.As(err, &short) {
		t.Fatalf("short balance should return InsufficientFundsError, got %v", err)
	}
	if short.Current != 99 || short.Required != 100 {
		t.Errorf("error should carry 99 of 100, got %d of %d", short.Current, short.Required)
	}
	if short.ProgressPercent < 98.9 || short.ProgressPercent > 99.1 {
		t.Errorf("progress should be ~99%%, got %.2f", short.ProgressPercent)
	}

	account, _ := ledger.GetAccount(ctx, username)
	if account.ExpiredJuice != 99 || account.MangoJuice != 0 {
		t.Errorf("failed conversion must not move funds: expired=%d juice=%d",
			account.ExpiredJuice, account.MangoJuice)
	}

	// Top up to exactly one batch and convert.
	if _, err := ledger.Adjust(ctx, username, models.CurrencyExpired, 1,
		models.ReasonAdminAdjust, "top up"); err != nil {
		t.Fatalf("top up failed: %v", err)
	}

	result, err := converter.ExpiredToJuice(ctx, username)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if result.DebitAmount != cfg.RequiredExpiredJuice || result.CreditAmount != cfg.ExpiredJuiceOutput {
		t.Errorf("expected %d -> %d, got %d -> %d",
			cfg.RequiredExpiredJuice, cfg.ExpiredJuiceOutput,
			result.DebitAmount, result.CreditAmount)
	}
	if result.DebitBalance != 0 {
		t.Errorf("expired juice should be fully consumed, got %d", result.DebitBalance)
	}
	if result.CreditBalance != cfg.ExpiredJuiceOutput {
		t.Errorf("expected %d mango juice, got %d", cfg.ExpiredJuiceOutput, result.CreditBalance)
	}

	// Converting a second batch doubles the output exactly.
	if _, err := ledger.Adjust(ctx, username, models.CurrencyExpired, cfg.RequiredExpiredJuice,
		models.ReasonAdminAdjust, "second batch"); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	result, err = converter.ExpiredToJuice(ctx, username)
	if err != nil {
		t.Fatalf("second conversion failed: %v", err)
	}
	if result.CreditBalance != 2*cfg.ExpiredJuiceOutput {
		t.Errorf("two conversions should yield %d juice, got %d",
			2*cfg.ExpiredJuiceOutput, result.CreditBalance)
	}
}

func TestJuiceToMango(t *testing.T) {
	redisService, cfg := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	converter := services.NewConverter(ledger, cfg)
	ctx := context.Background()
	username := testUsername(t, redisService, "convjuice")

	if _, err := ledger.Adjust(ctx, username, models.CurrencyJuice, 250,
		models.ReasonAdminAdjust, "seed"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := converter.JuiceToMango(ctx, username, 100)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if result.CreditAmount != 100*cfg.JuiceToMangoRate {
		t.Errorf("expected %d mangos credited, got %d",
			100*cfg.JuiceToMangoRate, result.CreditAmount)
	}
	if result.DebitBalance != 150 {
		t.Errorf("expected 150 juice left, got %d", result.DebitBalance)
	}

	if _, err := converter.JuiceToMango(ctx, username, 0); err == nil {
		t.Error("zero amount should be rejected")
	}

	// Overdraw: the debit leg rejects, nothing is credited.
	_, err = converter.JuiceToMango(ctx, username, 1000)
	var insufficient *services.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("overdraw should return InsufficientBalanceError, got %v", err)
	}

	account, _ := ledger.GetAccount(ctx, username)
	if account.MangoJuice != 150 {
		t.Errorf("failed conversion must not debit: juice=%d", account.MangoJuice)
	}
	if account.Mangos != 100 {
		t.Errorf("mango balance should still be 100, got %d", account.Mangos)
	}
}

func TestWithdrawJuice(t *testing.T) {
	redisService, cfg := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	converter := services.NewConverter(ledger, cfg)
	ctx := context.Background()
	username := testUsername(t, redisService, "withdraw")

	if _, err := ledger.Adjust(ctx, username, models.CurrencyJuice, 5000,
		models.ReasonAdminAdjust, "seed"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Below the minimum.
	if _, err := converter.WithdrawJuice(ctx, username, cfg.MinWithdrawJuice-1); err == nil {
		t.Error("below-minimum withdrawal should be rejected")
	}

	result, err := converter.WithdrawJuice(ctx, username, 2000)
	if err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}
	if result.USDCents != 2000*100/cfg.JuicePerUSD {
		t.Errorf("expected %d USD cents, got %d", 2000*100/cfg.JuicePerUSD, result.USDCents)
	}
	if result.NewBalance != 3000 {
		t.Errorf("expected 3000 juice left, got %d", result.NewBalance)
	}
}
