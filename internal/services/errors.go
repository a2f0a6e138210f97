package services

import (
	"fmt"

	"mango-roulette-backend/internal/models"
)

// ValidationError covers bad amounts or shapes. Always recoverable by
// the caller with corrected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// InsufficientBalanceError is returned when a debit would push an
// account balance below zero. Current and Required let the caller
// render an actionable message.
type InsufficientBalanceError struct {
	Currency models.Currency
	Current  int64
	Required int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s: have %d, need %d", e.Currency, e.Current, e.Required)
}

// InsufficientFundsError is the converter's precondition failure,
// including how far along the user is toward the required amount.
type InsufficientFundsError struct {
	Currency        models.Currency
	Current         int64
	Required        int64
	ProgressPercent float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s: have %d of %d (%.1f%%)",
		e.Currency, e.Current, e.Required, e.ProgressPercent)
}

// ConversionIncompleteError means the debit leg succeeded but the
// credit leg failed. The ledger is in a valid-but-partial state; the
// carried detail is enough to compensate manually or automatically.
type ConversionIncompleteError struct {
	Username       string
	DebitCurrency  models.Currency
	DebitAmount    int64
	CreditCurrency models.Currency
	CreditAmount   int64
	Err            error
}

func (e *ConversionIncompleteError) Error() string {
	return fmt.Sprintf("conversion incomplete for %s: debited %d %s but failed to credit %d %s: %v",
		e.Username, e.DebitAmount, e.DebitCurrency, e.CreditAmount, e.CreditCurrency, e.Err)
}

func (e *ConversionIncompleteError) Unwrap() error {
	return e.Err
}

// RoundClosedError rejects bets placed outside the betting window.
type RoundClosedError struct {
	Phase             models.Phase
	RetryAfterSeconds int64
}

func (e *RoundClosedError) Error() string {
	return fmt.Sprintf("round closed for betting (phase %s, next window in %ds)",
		e.Phase, e.RetryAfterSeconds)
}

// AlreadyClaimedError rejects daily claims inside the 24h window.
type AlreadyClaimedError struct {
	RetryAfterSeconds int64
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("daily reward already claimed, next claim in %ds", e.RetryAfterSeconds)
}

// FundDepletedError rejects house fund debits that would leave the
// balance negative. The fund is unchanged when this is returned.
type FundDepletedError struct {
	Current   int64
	Requested int64
}

func (e *FundDepletedError) Error() string {
	return fmt.Sprintf("house fund depleted: balance %d, requested %d", e.Current, e.Requested)
}
