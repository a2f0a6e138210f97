package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mango-roulette-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// MinorUnitsPerUSD is the fixed conversion for the admin deposit and
// withdraw interface: 1000 minor units = $1.
const MinorUnitsPerUSD = 1000

// HouseFundService serializes every fund mutation through one Redis
// script, so concurrent round settlements and admin withdrawals cannot
// race on the balance.
type HouseFundService struct {
	redis *RedisService
}

func NewHouseFundService(redisService *RedisService) *HouseFundService {
	return &HouseFundService{redis: redisService}
}

var adjustFundScript = redis.NewScript(`
	local key = KEYS[1]
	local delta = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])

	local fund = {balance = 0, updated_at = 0}
	local data = redis.call("GET", key)
	if data then
		fund = cjson.decode(data)
	end

	local result = fund.balance + delta

	if result < 0 then
		return {0, fund.balance}
	end

	fund.balance = result
	fund.updated_at = now

	redis.call("SET", key, cjson.encode(fund))

	return {1, result}
`)

// Adjust applies delta minor units to the fund. A debit that would
// leave the fund negative is rejected with FundDepletedError and the
// balance is unchanged. Every accepted adjustment appends a
// HouseTransaction.
func (h *HouseFundService) Adjust(ctx context.Context, delta int64, reason, metadata string) (int64, error) {
	now := time.Now().Unix()

	res, err := adjustFundScript.Run(ctx, h.redis.client, []string{KeyHouseFund},
		delta, now).Result()
	if err != nil {
		return 0, fmt.Errorf("house fund adjust failed: %w", err)
	}

	ok, balance, err := parseScriptPair(res)
	if err != nil {
		return 0, err
	}

	if !ok {
		return balance, &FundDepletedError{
			Current:   balance,
			Requested: -delta,
		}
	}

	tx := &models.HouseTransaction{
		ID:           models.GenerateHouseTxID(),
		Delta:        delta,
		Reason:       reason,
		Metadata:     metadata,
		BalanceAfter: balance,
		CreatedAt:    now,
	}

	if err := h.saveTransaction(ctx, tx); err != nil {
		return balance, fmt.Errorf("fund adjusted but transaction append failed: %w", err)
	}

	return balance, nil
}

func (h *HouseFundService) Balance(ctx context.Context) (*models.HouseFund, error) {
	data, err := h.redis.client.Get(ctx, KeyHouseFund).Result()
	if err == redis.Nil {
		return &models.HouseFund{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get house fund: %v", err)
	}

	var fund models.HouseFund
	if err := json.Unmarshal([]byte(data), &fund); err != nil {
		return nil, fmt.Errorf("failed to unmarshal house fund: %v", err)
	}

	return &fund, nil
}

// DepositUSD credits the fund from the admin display currency.
func (h *HouseFundService) DepositUSD(ctx context.Context, usd int64) (int64, error) {
	if usd < 1 {
		return 0, &ValidationError{Msg: "deposit must be at least $1"}
	}
	return h.Adjust(ctx, usd*MinorUnitsPerUSD, models.HouseReasonDeposit,
		fmt.Sprintf("usd=%d", usd))
}

// WithdrawUSD debits the fund. An over-drawing withdrawal comes back
// as FundDepletedError, an ordinary rejected request.
func (h *HouseFundService) WithdrawUSD(ctx context.Context, usd int64) (int64, error) {
	if usd < 1 {
		return 0, &ValidationError{Msg: "withdrawal must be at least $1"}
	}
	return h.Adjust(ctx, -usd*MinorUnitsPerUSD, models.HouseReasonWithdraw,
		fmt.Sprintf("usd=%d", usd))
}

func (h *HouseFundService) saveTransaction(ctx context.Context, tx *models.HouseTransaction) error {
	txKey := fmt.Sprintf(KeyHouseTx, tx.ID)

	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal house transaction: %v", err)
	}

	if err := h.redis.client.Set(ctx, txKey, data, TTLHouseTx).Err(); err != nil {
		return fmt.Errorf("failed to save house transaction: %v", err)
	}

	if err := h.redis.client.ZAdd(ctx, KeyHouseTxLog, redis.Z{
		Score:  float64(tx.CreatedAt),
		Member: tx.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to append house transaction log: %v", err)
	}

	h.redis.client.ZRemRangeByRank(ctx, KeyHouseTxLog, 0, int64(-MaxHouseTxHistory-1))

	return nil
}

func (h *HouseFundService) Transactions(ctx context.Context, limit int64) ([]*models.HouseTransaction, error) {
	if limit <= 0 || limit > MaxHouseTxHistory {
		limit = 50
	}

	ids, err := h.redis.client.ZRevRange(ctx, KeyHouseTxLog, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get house transaction IDs: %v", err)
	}

	var txs []*models.HouseTransaction
	for _, id := range ids {
		data, err := h.redis.client.Get(ctx, fmt.Sprintf(KeyHouseTx, id)).Result()
		if err != nil {
			continue
		}

		var tx models.HouseTransaction
		if err := json.Unmarshal([]byte(data), &tx); err != nil {
			continue
		}

		txs = append(txs, &tx)
	}

	return txs, nil
}
