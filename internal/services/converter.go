package services

import (
	"context"
	"fmt"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/models"
)

// Converter translates between currencies at the fixed rates from
// config. Each conversion is two sequential atomic ledger legs (debit,
// then credit); there is deliberately no cross-currency transaction, so
// a failed credit leg surfaces as ConversionIncompleteError with enough
// detail to compensate.
type Converter struct {
	ledger *Ledger
	cfg    *config.Config
}

func NewConverter(ledger *Ledger, cfg *config.Config) *Converter {
	return &Converter{ledger: ledger, cfg: cfg}
}

type ConversionResult struct {
	DebitCurrency  models.Currency `json:"debit_currency"`
	DebitAmount    int64           `json:"debit_amount"`
	DebitBalance   int64           `json:"debit_balance"`
	CreditCurrency models.Currency `json:"credit_currency"`
	CreditAmount   int64           `json:"credit_amount"`
	CreditBalance  int64           `json:"credit_balance"`
}

// ExpiredToJuice converts a fixed batch of expired juice back into
// mango juice. The precondition check happens before any ledger call so
// a short balance never produces a partial conversion.
func (c *Converter) ExpiredToJuice(ctx context.Context, username string) (*ConversionResult, error) {
	required := c.cfg.RequiredExpiredJuice
	output := c.cfg.ExpiredJuiceOutput

	account, err := c.ledger.GetAccount(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.ExpiredJuice < required {
		return nil, &InsufficientFundsError{
			Currency:        models.CurrencyExpired,
			Current:         account.ExpiredJuice,
			Required:        required,
			ProgressPercent: float64(account.ExpiredJuice) / float64(required) * 100,
		}
	}

	return c.convert(ctx, username,
		models.CurrencyExpired, required,
		models.CurrencyJuice, output)
}

// JuiceToMango converts mango juice into mangos at the configured rate.
func (c *Converter) JuiceToMango(ctx context.Context, username string, amount int64) (*ConversionResult, error) {
	if amount < 1 {
		return nil, &ValidationError{Msg: "conversion amount must be positive"}
	}

	return c.convert(ctx, username,
		models.CurrencyJuice, amount,
		models.CurrencyMango, amount*c.cfg.JuiceToMangoRate)
}

func (c *Converter) convert(ctx context.Context, username string, debitCurrency models.Currency, debitAmount int64, creditCurrency models.Currency, creditAmount int64) (*ConversionResult, error) {
	details := fmt.Sprintf("%d %s -> %d %s", debitAmount, debitCurrency, creditAmount, creditCurrency)

	debitBalance, err := c.ledger.Adjust(ctx, username, debitCurrency, -debitAmount,
		models.ReasonConvertDebit, details)
	if err != nil {
		return nil, err
	}

	creditBalance, err := c.ledger.Adjust(ctx, username, creditCurrency, creditAmount,
		models.ReasonConvertCredit, details)
	if err != nil {
		return nil, &ConversionIncompleteError{
			Username:       username,
			DebitCurrency:  debitCurrency,
			DebitAmount:    debitAmount,
			CreditCurrency: creditCurrency,
			CreditAmount:   creditAmount,
			Err:            err,
		}
	}

	return &ConversionResult{
		DebitCurrency:  debitCurrency,
		DebitAmount:    debitAmount,
		DebitBalance:   debitBalance,
		CreditCurrency: creditCurrency,
		CreditAmount:   creditAmount,
		CreditBalance:  creditBalance,
	}, nil
}

type WithdrawResult struct {
	JuiceDebited int64 `json:"juice_debited"`
	USDCents     int64 `json:"usd_cents"`
	NewBalance   int64 `json:"new_balance"`
}

// WithdrawJuice debits withdrawable juice and reports the USD value at
// the configured rate. Withdrawals are modeled as ledger entries only;
// no payment gateway is involved here.
func (c *Converter) WithdrawJuice(ctx context.Context, username string, amount int64) (*WithdrawResult, error) {
	if amount < c.cfg.MinWithdrawJuice {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("minimum withdrawal is %d mango juice", c.cfg.MinWithdrawJuice),
		}
	}

	usdCents := amount * 100 / c.cfg.JuicePerUSD

	balance, err := c.ledger.Adjust(ctx, username, models.CurrencyJuice, -amount,
		models.ReasonWithdraw, fmt.Sprintf("usd_cents=%d", usdCents))
	if err != nil {
		return nil, err
	}

	return &WithdrawResult{
		JuiceDebited: amount,
		USDCents:     usdCents,
		NewBalance:   balance,
	}, nil
}
