package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

func TestLedgerAdjust(t *testing.T) {
	redisService, _ := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	ctx := context.Background()
	username := testUsername(t, redisService, "ledger")

	account, err := ledger.GetAccount(ctx, username)
	if err != nil {
		t.Fatalf("failed to lazy-create account: %v", err)
	}
	if account.Mangos != 0 {
		t.Errorf("new account should start at zero mangos, got %d", account.Mangos)
	}

	balance, err := ledger.Adjust(ctx, username, models.CurrencyMango, 500,
		models.ReasonAdminAdjust, "test credit")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if balance != 500 {
		t.Errorf("expected balance 500 after credit, got %d", balance)
	}

	balance, err = ledger.Adjust(ctx, username, models.CurrencyMango, -200,
		models.ReasonAdminAdjust, "test debit")
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if balance != 300 {
		t.Errorf("expected balance 300 after debit, got %d", balance)
	}

	_, err = ledger.Adjust(ctx, username, models.CurrencyMango, -400,
		models.ReasonAdminAdjust, "overdraw attempt")
	var insufficient *services.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("overdraw should return InsufficientBalanceError, got %v", err)
	}
	if insufficient.Current != 300 || insufficient.Required != 400 {
		t.Errorf("error should carry current=300 required=400, got %d/%d",
			insufficient.Current, insufficient.Required)
	}

	// The rejected debit must not have touched the balance.
	account, err = ledger.GetAccount(ctx, username)
	if err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if account.Mangos != 300 {
		t.Errorf("balance should be unchanged after rejection, got %d", account.Mangos)
	}

	// Currencies are independent.
	if account.MangoJuice != 0 {
		t.Errorf("mango juice should be untouched, got %d", account.MangoJuice)
	}

	if _, err := ledger.Adjust(ctx, username, "doubloons", 100,
		models.ReasonAdminAdjust, ""); err == nil {
		t.Error("unknown currency should be rejected")
	}
}

func TestLedgerEntries(t *testing.T) {
	redisService, _ := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	ctx := context.Background()
	username := testUsername(t, redisService, "ledgerlog")

	if _, err := ledger.Adjust(ctx, username, models.CurrencyJuice, 100,
		models.ReasonConvertCredit, "first"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if _, err := ledger.Adjust(ctx, username, models.CurrencyJuice, -40,
		models.ReasonWithdraw, "second"); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	entries, err := ledger.GetEntries(ctx, username, 10)
	if err != nil {
		t.Fatalf("failed to get entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}

	byDelta := make(map[int64]*models.LedgerEntry)
	for _, entry := range entries {
		byDelta[entry.Delta] = entry
	}

	credit, ok := byDelta[100]
	if !ok || credit.BalanceAfter != 100 || credit.Reason != models.ReasonConvertCredit {
		t.Errorf("credit entry missing or wrong: %+v", credit)
	}
	debit, ok := byDelta[-40]
	if !ok || debit.BalanceAfter != 60 || debit.Reason != models.ReasonWithdraw {
		t.Errorf("debit entry missing or wrong: %+v", debit)
	}
}

func TestLedgerConcurrentAdjusts(t *testing.T) {
	redisService, _ := newTestRedis(t)
	ledger := services.NewLedger(redisService)
	ctx := context.Background()
	username := testUsername(t, redisService, "ledgerrace")

	if _, err := ledger.Adjust(ctx, username, models.CurrencyMango, 1000,
		models.ReasonAdminAdjust, "seed"); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	// 50 concurrent debits of 10 against a balance of 1000: every one
	// must succeed and the final balance must be exact.
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Adjust(ctx, username, models.CurrencyMango, -10,
				models.ReasonBetPlace, "concurrent"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent debit failed: %v", err)
	}

	account, err := ledger.GetAccount(ctx, username)
	if err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if account.Mangos != 500 {
		t.Errorf("expected balance 500 after 50 debits of 10, got %d", account.Mangos)
	}
}
