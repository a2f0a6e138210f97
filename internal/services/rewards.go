package services

import (
	"context"
	"fmt"
	"time"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	claimWindowSeconds  = 24 * 60 * 60
	streakWindowSeconds = 48 * 60 * 60
	maxStreakBonusSteps = 6
	streakBonusPercent  = 10
)

// RewardScheduler evaluates the once-per-24h daily claim. The balance
// credit and the claim metadata live in the same account record and are
// updated by one script, so a claim can never persist one without the
// other.
type RewardScheduler struct {
	redis  *RedisService
	ledger *Ledger
	cfg    *config.Config
}

func NewRewardScheduler(redisService *RedisService, ledger *Ledger, cfg *config.Config) *RewardScheduler {
	return &RewardScheduler{redis: redisService, ledger: ledger, cfg: cfg}
}

var claimDailyScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local base = tonumber(ARGV[2])
	local windowSec = tonumber(ARGV[3])
	local streakSec = tonumber(ARGV[4])
	local maxSteps = tonumber(ARGV[5])
	local stepPct = tonumber(ARGV[6])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("account not found")
	end

	local acct = cjson.decode(data)
	local last = acct.last_daily_claim_at or 0

	if last > 0 and now - last < windowSec then
		return {0, last + windowSec - now, 0, 0, 0}
	end

	local streak = 1
	if last > 0 and now - last < streakSec then
		streak = (acct.daily_streak or 0) + 1
	end

	local steps = streak - 1
	if steps > maxSteps then
		steps = maxSteps
	end
	local bonus = steps * stepPct
	local reward = math.floor(base * (100 + bonus) / 100)

	acct.fermented_mangos = (acct.fermented_mangos or 0) + reward
	acct.daily_streak = streak
	acct.last_daily_claim_at = now
	acct.updated_at = now

	redis.call("SET", key, cjson.encode(acct))

	return {1, reward, streak, bonus, acct.fermented_mangos}
`)

type ClaimResult struct {
	Reward       int64 `json:"reward"`
	Streak       int   `json:"streak"`
	BonusPercent int64 `json:"bonus_percent"`
	NewBalance   int64 `json:"new_balance"`
}

// CanClaimAt reports whether the window is open at the given instant,
// and the seconds remaining if it is not.
func (r *RewardScheduler) CanClaimAt(ctx context.Context, username string, now int64) (bool, int64, error) {
	account, err := r.redis.GetAccount(ctx, username)
	if err != nil {
		return false, 0, fmt.Errorf("failed to load account: %w", err)
	}

	if account.LastDailyClaimAt == 0 {
		return true, 0, nil
	}

	elapsed := now - account.LastDailyClaimAt
	if elapsed >= claimWindowSeconds {
		return true, 0, nil
	}

	return false, claimWindowSeconds - elapsed, nil
}

func (r *RewardScheduler) CanClaim(ctx context.Context, username string) (bool, int64, error) {
	return r.CanClaimAt(ctx, username, time.Now().Unix())
}

// ClaimAt performs the claim as of the given instant. The streak
// continues when the previous claim is less than 48h old, otherwise it
// resets to 1; the bonus is min(streak-1, 6) * 10%.
func (r *RewardScheduler) ClaimAt(ctx context.Context, username string, now int64) (*ClaimResult, error) {
	if _, err := r.redis.GetAccount(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	key := fmt.Sprintf(KeyAccount, username)

	res, err := claimDailyScript.Run(ctx, r.redis.client, []string{key},
		now, r.cfg.DailyRewardBase,
		claimWindowSeconds, streakWindowSeconds,
		maxStreakBonusSteps, streakBonusPercent).Result()
	if err != nil {
		return nil, fmt.Errorf("daily claim failed: %w", err)
	}

	row, ok := res.([]interface{})
	if !ok || len(row) < 5 {
		return nil, fmt.Errorf("unexpected claim script reply: %v", res)
	}

	flag, _ := row[0].(int64)
	if flag != 1 {
		retryAfter, _ := row[1].(int64)
		return nil, &AlreadyClaimedError{RetryAfterSeconds: retryAfter}
	}

	reward, _ := row[1].(int64)
	streak, _ := row[2].(int64)
	bonus, _ := row[3].(int64)
	balance, _ := row[4].(int64)

	entry := &models.LedgerEntry{
		ID:           models.GenerateEntryID(),
		Username:     username,
		Currency:     models.CurrencyFermented,
		Delta:        reward,
		BalanceAfter: balance,
		Reason:       models.ReasonDailyReward,
		Details:      fmt.Sprintf("streak=%d bonus=%d%%", streak, bonus),
		CreatedAt:    now,
	}
	if err := r.redis.SaveLedgerEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("reward credited but ledger append failed: %w", err)
	}

	return &ClaimResult{
		Reward:       reward,
		Streak:       int(streak),
		BonusPercent: bonus,
		NewBalance:   balance,
	}, nil
}

func (r *RewardScheduler) Claim(ctx context.Context, username string) (*ClaimResult, error) {
	return r.ClaimAt(ctx, username, time.Now().Unix())
}
