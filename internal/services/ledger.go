package services

import (
	"context"
	"fmt"
	"time"

	"mango-roulette-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Ledger is the exclusive owner of per-user balances. Every mutation
// goes through Adjust, which runs the check and the write in a single
// Redis script so no concurrent adjust on the same account can observe
// an intermediate state.
type Ledger struct {
	redis *RedisService
}

func NewLedger(redisService *RedisService) *Ledger {
	return &Ledger{redis: redisService}
}

var adjustBalanceScript = redis.NewScript(`
	local key = KEYS[1]
	local currency = ARGV[1]
	local delta = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("account not found")
	end

	local acct = cjson.decode(data)
	local balance = acct[currency] or 0
	local result = balance + delta

	if result < 0 then
		return {0, balance}
	end

	acct[currency] = result
	acct.updated_at = now

	redis.call("SET", key, cjson.encode(acct))

	return {1, result}
`)

// Adjust applies delta to one (username, currency) balance and returns
// the post-adjustment balance. A debit that would go negative is
// rejected with InsufficientBalanceError and leaves the balance
// untouched. On success a LedgerEntry is appended.
func (l *Ledger) Adjust(ctx context.Context, username string, currency models.Currency, delta int64, reason, details string) (int64, error) {
	if !currency.Valid() {
		return 0, &ValidationError{Msg: fmt.Sprintf("invalid currency: %s", currency)}
	}

	// Lazy-creates the account so the script always has a record.
	if _, err := l.redis.GetAccount(ctx, username); err != nil {
		return 0, fmt.Errorf("failed to load account: %w", err)
	}

	key := fmt.Sprintf(KeyAccount, username)
	now := time.Now().Unix()

	res, err := adjustBalanceScript.Run(ctx, l.redis.client, []string{key},
		string(currency), delta, now).Result()
	if err != nil {
		return 0, fmt.Errorf("balance adjust failed: %w", err)
	}

	ok, balance, err := parseScriptPair(res)
	if err != nil {
		return 0, err
	}

	if !ok {
		return balance, &InsufficientBalanceError{
			Currency: currency,
			Current:  balance,
			Required: -delta,
		}
	}

	entry := &models.LedgerEntry{
		ID:           models.GenerateEntryID(),
		Username:     username,
		Currency:     currency,
		Delta:        delta,
		BalanceAfter: balance,
		Reason:       reason,
		Details:      details,
		CreatedAt:    now,
	}

	if err := l.redis.SaveLedgerEntry(ctx, entry); err != nil {
		// The balance change is already durable; a lost log row is a
		// reconciliation problem, not a reason to fail the caller.
		return balance, fmt.Errorf("balance adjusted but ledger append failed: %w", err)
	}

	return balance, nil
}

func (l *Ledger) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	return l.redis.GetAccount(ctx, username)
}

func (l *Ledger) GetEntries(ctx context.Context, username string, limit int64) ([]*models.LedgerEntry, error) {
	return l.redis.GetLedgerEntries(ctx, username, limit)
}

// parseScriptPair decodes the {ok, value} tables the mutation scripts
// return.
func parseScriptPair(res interface{}) (bool, int64, error) {
	pair, ok := res.([]interface{})
	if !ok || len(pair) < 2 {
		return false, 0, fmt.Errorf("unexpected script reply: %v", res)
	}

	flag, ok1 := pair[0].(int64)
	value, ok2 := pair[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected script reply types: %v", res)
	}

	return flag == 1, value, nil
}
