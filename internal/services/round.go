package services

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"mango-roulette-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RoundEngine drives the shared roulette round through
// betting -> locked -> spinning -> result. Transitions are time-driven:
// a background ticker calls Tick, and every transition is a
// compare-and-swap script on the stored round, so any number of
// concurrent observers can evaluate a stale phase but exactly one
// performs the side effects.
type RoundEngine struct {
	redis       *RedisService
	ledger      *Ledger
	house       *HouseFundService
	params      *ParamsService
	broadcaster Broadcaster
	serverSeed  string
	clock       func() time.Time
}

func NewRoundEngine(redisService *RedisService, ledger *Ledger, house *HouseFundService, params *ParamsService) *RoundEngine {
	return &RoundEngine{
		redis:      redisService,
		ledger:     ledger,
		house:      house,
		params:     params,
		serverSeed: generateServerSeed(),
		clock:      time.Now,
	}
}

func generateServerSeed() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (e *RoundEngine) SetBroadcaster(b Broadcaster) {
	e.broadcaster = b
}

// SetClock replaces the time source. Tests use it to drive phase
// transitions without waiting out real durations.
func (e *RoundEngine) SetClock(clock func() time.Time) {
	e.clock = clock
}

func (e *RoundEngine) GetServerHash() string {
	hash := sha256.Sum256([]byte(e.serverSeed))
	return hex.EncodeToString(hash[:])
}

func (e *RoundEngine) GetServerSeed() string {
	return e.serverSeed
}

// drawOutcome derives the winning pocket and the secondary bonus pocket
// from the HMAC chain. The spin duration is purely presentational; the
// result is committed the moment the wheel starts.
func (e *RoundEngine) drawOutcome(roundID string, nonce int64) (int, int, string) {
	return deriveOutcome(e.serverSeed, roundID, nonce)
}

func deriveOutcome(serverSeed, roundID string, nonce int64) (int, int, string) {
	message := fmt.Sprintf("%s:%d", roundID, nonce)
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(message))
	hash := hex.EncodeToString(h.Sum(nil))

	primary, _ := strconv.ParseInt(hash[:8], 16, 64)
	secondary, _ := strconv.ParseInt(hash[8:16], 16, 64)

	return int(primary % models.WheelPockets), int(secondary % models.WheelPockets), hash
}

// VerifyOutcome lets players recompute a published round result from a
// disclosed server seed.
func (e *RoundEngine) VerifyOutcome(serverSeed, roundID string, nonce int64) (int, int, string) {
	return deriveOutcome(serverSeed, roundID, nonce)
}

func (e *RoundEngine) newRound(ctx context.Context, now time.Time) (*models.GameRound, error) {
	nonce, err := e.redis.client.Incr(ctx, KeyRoundNonce).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate round nonce: %v", err)
	}

	params := e.params.Get()
	start := now.Unix()

	return &models.GameRound{
		RoundID:          models.GenerateRoundID(),
		Phase:            models.PhaseBetting,
		BettingEndsAt:    start + params.BettingDuration,
		LockedEndsAt:     start + params.BettingDuration + params.LockedDuration,
		SpinEndsAt:       start + params.BettingDuration + params.LockedDuration + params.SpinDuration,
		ResultEndsAt:     start + params.BettingDuration + params.LockedDuration + params.SpinDuration + params.ResultDuration,
		WinningOutcome:   -1,
		SecondaryOutcome: -1,
		Nonce:            nonce,
		CreatedAt:        start,
	}, nil
}

// EnsureRound installs the first round if none exists yet.
func (e *RoundEngine) EnsureRound(ctx context.Context) (*models.GameRound, error) {
	round, err := e.redis.GetCurrentRound(ctx)
	if err != nil {
		return nil, err
	}
	if round != nil {
		return round, nil
	}

	round, err = e.newRound(ctx, e.clock())
	if err != nil {
		return nil, err
	}

	created, err := e.redis.CreateRoundIfAbsent(ctx, round)
	if err != nil {
		return nil, err
	}
	if !created {
		return e.redis.GetCurrentRound(ctx)
	}

	log.Printf("Round %s opened for betting", round.RoundID)
	return round, nil
}

// Current returns the live round plus the seconds remaining in its
// phase, clamped at zero for clients polling across a boundary.
func (e *RoundEngine) Current(ctx context.Context) (*models.GameRound, int64, error) {
	round, err := e.EnsureRound(ctx)
	if err != nil {
		return nil, 0, err
	}

	remaining := phaseEndsAt(round) - e.clock().Unix()
	if remaining < 0 {
		remaining = 0
	}

	return round, remaining, nil
}

func phaseEndsAt(round *models.GameRound) int64 {
	switch round.Phase {
	case models.PhaseBetting:
		return round.BettingEndsAt
	case models.PhaseLocked:
		return round.LockedEndsAt
	case models.PhaseSpinning:
		return round.SpinEndsAt
	default:
		return round.ResultEndsAt
	}
}

var placeBetScript = redis.NewScript(`
	local roundData = redis.call("GET", KEYS[1])
	if not roundData then
		return {0, "round_closed", 0}
	end

	local round = cjson.decode(roundData)
	local now = tonumber(ARGV[2])

	if round.round_id ~= ARGV[1] then
		return {0, "round_closed", round.result_ends_at - now}
	end
	if round.phase ~= "betting" or now >= round.betting_ends_at then
		return {0, "round_closed", round.result_ends_at - now}
	end

	local acctData = redis.call("GET", KEYS[2])
	if not acctData then
		return redis.error_reply("account not found")
	end

	local acct = cjson.decode(acctData)
	local currency = ARGV[3]
	local amount = tonumber(ARGV[4])
	local balance = acct[currency] or 0

	if balance < amount then
		return {0, "insufficient", balance}
	end

	acct[currency] = balance - amount
	acct.updated_at = now
	redis.call("SET", KEYS[2], cjson.encode(acct))
	redis.call("RPUSH", KEYS[3], ARGV[5])

	return {1, "ok", acct[currency]}
`)

// PlaceBet validates, reserves the stake, and records the bet in one
// script: the phase check, the balance debit, and the bet append all
// see the same consistent state, so a bet can never be half-accepted
// across a phase boundary and a user cannot overdraw under concurrent
// placement. The stake is an immediate debit, not a deferred one.
func (e *RoundEngine) PlaceBet(ctx context.Context, username string, req *models.PlaceBetRequest) (*models.Bet, int64, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, &ValidationError{Msg: err.Error()}
	}

	params := e.params.Get()
	maxBet := params.MaxBetReal
	if req.Trial {
		maxBet = params.MaxBetTrial
	}
	if req.Amount > maxBet {
		return nil, 0, &ValidationError{
			Msg: fmt.Sprintf("maximum bet is %d %s", maxBet, req.StakeCurrency()),
		}
	}

	round, err := e.EnsureRound(ctx)
	if err != nil {
		return nil, 0, err
	}

	// Lazy-create before the script; it errors on a missing account.
	if _, err := e.redis.GetAccount(ctx, username); err != nil {
		return nil, 0, fmt.Errorf("failed to load account: %w", err)
	}

	now := e.clock().Unix()
	bet := &models.Bet{
		ID:           models.GenerateBetID(),
		RoundID:      round.RoundID,
		Username:     username,
		Type:         req.Type,
		Amount:       req.Amount,
		TargetNumber: req.TargetNumber,
		Currency:     req.StakeCurrency(),
		PlacedAt:     now,
	}

	betJSON, err := json.Marshal(bet)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal bet: %v", err)
	}

	keys := []string{
		KeyCurrentRound,
		fmt.Sprintf(KeyAccount, username),
		fmt.Sprintf(KeyRoundBets, round.RoundID),
	}

	res, err := placeBetScript.Run(ctx, e.redis.client, keys,
		round.RoundID, now, string(bet.Currency), bet.Amount, betJSON).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("bet placement failed: %w", err)
	}

	flag, reason, value, err := parseBetReply(res)
	if err != nil {
		return nil, 0, err
	}

	if flag != 1 {
		switch reason {
		case "insufficient":
			return nil, 0, &InsufficientBalanceError{
				Currency: bet.Currency,
				Current:  value,
				Required: bet.Amount,
			}
		default:
			retryAfter := value
			if retryAfter < 0 {
				retryAfter = 0
			}
			return nil, 0, &RoundClosedError{
				Phase:             round.Phase,
				RetryAfterSeconds: retryAfter,
			}
		}
	}

	entry := &models.LedgerEntry{
		ID:           models.GenerateEntryID(),
		Username:     username,
		Currency:     bet.Currency,
		Delta:        -bet.Amount,
		BalanceAfter: value,
		Reason:       models.ReasonBetPlace,
		Details:      fmt.Sprintf("round=%s bet=%s type=%s", round.RoundID, bet.ID, bet.Type),
		CreatedAt:    now,
	}
	if err := e.redis.SaveLedgerEntry(ctx, entry); err != nil {
		log.Printf("Bet %s placed but ledger append failed: %v", bet.ID, err)
	}

	return bet, value, nil
}

func parseBetReply(res interface{}) (int64, string, int64, error) {
	row, ok := res.([]interface{})
	if !ok || len(row) < 3 {
		return 0, "", 0, fmt.Errorf("unexpected bet script reply: %v", res)
	}

	flag, _ := row[0].(int64)
	reason, _ := row[1].(string)
	value, _ := row[2].(int64)

	return flag, reason, value, nil
}

var advancePhaseScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return 0
	end

	local round = cjson.decode(data)
	if round.round_id ~= ARGV[1] or round.phase ~= ARGV[2] then
		return 0
	end

	round.phase = ARGV[3]

	local outcome = tonumber(ARGV[4])
	if outcome >= 0 then
		round.winning_outcome = outcome
		round.secondary_outcome = tonumber(ARGV[5])
		round.outcome_hash = ARGV[6]
	end

	redis.call("SET", KEYS[1], cjson.encode(round))
	return 1
`)

func (e *RoundEngine) advancePhase(ctx context.Context, round *models.GameRound, to models.Phase, outcome, secondary int, hash string) (bool, error) {
	res, err := advancePhaseScript.Run(ctx, e.redis.client, []string{KeyCurrentRound},
		round.RoundID, string(round.Phase), string(to), outcome, secondary, hash).Result()
	if err != nil {
		return false, fmt.Errorf("phase advance failed: %w", err)
	}

	won, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected advance script reply: %v", res)
	}

	return won == 1, nil
}

var rotateRoundScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return 0
	end

	local round = cjson.decode(data)
	if round.round_id ~= ARGV[1] or round.phase ~= "result" then
		return 0
	end

	redis.call("SET", KEYS[1], ARGV[2])
	return 1
`)

var roundSummaryScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return 0
	end

	local round = cjson.decode(data)
	if round.round_id ~= ARGV[1] then
		return 0
	end

	round.total_staked = tonumber(ARGV[2])
	round.total_paid = tonumber(ARGV[3])
	round.payout_scale = tonumber(ARGV[4])
	round.bet_count = tonumber(ARGV[5])

	redis.call("SET", KEYS[1], cjson.encode(round))
	return 1
`)

// Tick advances the round when its current phase has expired. It is
// idempotent and safe to call from any number of goroutines; the CAS
// scripts guarantee each transition's side effects run exactly once.
func (e *RoundEngine) Tick(ctx context.Context, now time.Time) error {
	round, err := e.EnsureRound(ctx)
	if err != nil {
		return err
	}

	ts := now.Unix()

	switch round.Phase {
	case models.PhaseBetting:
		if ts < round.BettingEndsAt {
			return nil
		}
		won, err := e.advancePhase(ctx, round, models.PhaseLocked, -1, -1, "")
		if err != nil {
			return err
		}
		if won {
			round.Phase = models.PhaseLocked
			e.broadcastRound(round)
		}

	case models.PhaseLocked:
		if ts < round.LockedEndsAt {
			return nil
		}
		outcome, secondary, hash := e.drawOutcome(round.RoundID, round.Nonce)
		won, err := e.advancePhase(ctx, round, models.PhaseSpinning, outcome, secondary, hash)
		if err != nil {
			return err
		}
		if won {
			round.Phase = models.PhaseSpinning
			round.WinningOutcome = outcome
			round.SecondaryOutcome = secondary
			round.OutcomeHash = hash
			log.Printf("Round %s spinning, outcome committed", round.RoundID)
			e.broadcastRound(round)
		}

	case models.PhaseSpinning:
		if ts < round.SpinEndsAt {
			return nil
		}
		won, err := e.advancePhase(ctx, round, models.PhaseResult, -1, -1, "")
		if err != nil {
			return err
		}
		if won {
			round.Phase = models.PhaseResult
			e.settle(ctx, round)
		}

	case models.PhaseResult:
		if ts < round.ResultEndsAt {
			return nil
		}
		return e.rotate(ctx, round, now)
	}

	return nil
}

// settle evaluates every bet against the committed outcome, applies the
// protection policy, credits winners, and posts the single aggregate
// house fund adjustment. Only the CAS winner of the spinning->result
// transition ever gets here, so settlement runs exactly once per round.
func (e *RoundEngine) settle(ctx context.Context, round *models.GameRound) {
	bets, err := e.redis.GetRoundBets(ctx, round.RoundID)
	if err != nil {
		log.Printf("Round %s settlement aborted, cannot load bets: %v", round.RoundID, err)
		return
	}

	fund, err := e.house.Balance(ctx)
	if err != nil {
		log.Printf("Round %s settlement: cannot read house fund, assuming empty: %v", round.RoundID, err)
		fund = &models.HouseFund{}
	}

	threshold := e.params.Get().ProtectionThreshold

	var realStaked, realDemand int64
	payouts := make([]int64, len(bets))

	for i, bet := range bets {
		multiplier := models.BetMultiplier(bet.Type, bet.TargetNumber,
			round.WinningOutcome, round.SecondaryOutcome)
		payouts[i] = bet.Amount * multiplier

		if bet.Currency == models.CurrencyMango {
			realStaked += bet.Amount
			realDemand += payouts[i]
		}
	}

	scale := PayoutScale(fund.Balance, realDemand, realStaked, threshold)
	if scale < 1 {
		log.Printf("Round %s payout protection engaged: scale=%.4f demand=%d staked=%d fund=%d",
			round.RoundID, scale, realDemand, realStaked, fund.Balance)
	}

	var realPaid int64

	for i, bet := range bets {
		payout := payouts[i]

		if payout > 0 && bet.Currency == models.CurrencyMango {
			payout = int64(math.Floor(float64(payout) * scale))
		}

		bet.Win = payout > 0
		bet.Payout = payout

		if payout > 0 {
			details := fmt.Sprintf("round=%s bet=%s outcome=%d", round.RoundID, bet.ID, round.WinningOutcome)
			if _, err := e.ledger.Adjust(ctx, bet.Username, bet.Currency, payout,
				models.ReasonBetWin, details); err != nil {
				// One failed credit must not abort the rest of the
				// round; it is logged for reconciliation and the house
				// keeps the unpaid amount.
				log.Printf("Round %s: payout of %d to %s failed: %v",
					round.RoundID, payout, bet.Username, err)
				bet.Win = false
				bet.Payout = 0
				payout = 0
			}
		}

		if bet.Currency == models.CurrencyMango {
			realPaid += payout
		}

		if err := e.redis.SaveUserBet(ctx, bet); err != nil {
			log.Printf("Round %s: failed to record bet history for %s: %v",
				round.RoundID, bet.Username, err)
		}
	}

	houseDelta := realStaked - realPaid
	if houseDelta != 0 {
		metadata := fmt.Sprintf("round=%s staked=%d paid=%d scale=%.4f",
			round.RoundID, realStaked, realPaid, scale)
		if _, err := e.house.Adjust(ctx, houseDelta, models.HouseReasonSettlement, metadata); err != nil {
			log.Printf("Round %s: house fund adjustment of %d failed: %v",
				round.RoundID, houseDelta, err)
		}
	}

	round.TotalStaked = realStaked
	round.TotalPaid = realPaid
	round.PayoutScale = scale
	round.BetCount = len(bets)

	if _, err := roundSummaryScript.Run(ctx, e.redis.client, []string{KeyCurrentRound},
		round.RoundID, realStaked, realPaid, scale, len(bets)).Result(); err != nil {
		log.Printf("Round %s: failed to store settlement summary: %v", round.RoundID, err)
	}

	log.Printf("Round %s settled: outcome=%d bets=%d staked=%d paid=%d",
		round.RoundID, round.WinningOutcome, len(bets), realStaked, realPaid)

	if e.broadcaster != nil {
		e.broadcaster.BroadcastSettlement(round, bets)
	}
}

// rotate archives the finished round and opens the next one.
func (e *RoundEngine) rotate(ctx context.Context, round *models.GameRound, now time.Time) error {
	next, err := e.newRound(ctx, now)
	if err != nil {
		return err
	}

	nextJSON, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal next round: %v", err)
	}

	res, err := rotateRoundScript.Run(ctx, e.redis.client, []string{KeyCurrentRound},
		round.RoundID, nextJSON).Result()
	if err != nil {
		return fmt.Errorf("round rotation failed: %w", err)
	}

	if won, ok := res.(int64); !ok || won != 1 {
		return nil
	}

	// The round passed in was read after settlement stored its summary,
	// so the archive carries the final totals.
	if err := e.redis.ArchiveRound(ctx, round); err != nil {
		log.Printf("Failed to archive round %s: %v", round.RoundID, err)
	}

	log.Printf("Round %s archived, round %s opened for betting", round.RoundID, next.RoundID)
	e.broadcastRound(next)

	return nil
}

func (e *RoundEngine) broadcastRound(round *models.GameRound) {
	if e.broadcaster != nil {
		e.broadcaster.BroadcastRoundUpdate(round)
	}
}

func (e *RoundEngine) RecentRounds(ctx context.Context, limit int64) ([]*models.GameRound, error) {
	return e.redis.GetRecentRounds(ctx, limit)
}

func (e *RoundEngine) UserBets(ctx context.Context, username string, limit int64) ([]*models.Bet, error) {
	return e.redis.GetUserBets(ctx, username, limit)
}

// PayoutScale is the deterministic protection policy. The fund only
// ever risks collected stakes plus the slice of its balance above the
// protection threshold: with threshold 0 the whole fund backs payouts,
// with threshold 1 winners share no more than the round's own stakes.
// The same factor applies to every winning bet in the round, and the
// post-settlement balance can never drop below threshold * balance,
// which in particular keeps it non-negative.
func PayoutScale(fundBalance, payoutDemand, stakedTotal int64, threshold float64) float64 {
	if payoutDemand <= 0 {
		return 1
	}

	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}

	headroom := float64(stakedTotal) + (1-threshold)*float64(fundBalance)
	if headroom >= float64(payoutDemand) {
		return 1
	}
	if headroom <= 0 {
		return 0
	}

	return headroom / float64(payoutDemand)
}
