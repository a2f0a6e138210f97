package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// GetAccount loads an account, creating the zero-balance account on
// first access. Creation uses SETNX so two concurrent first reads
// cannot clobber each other.
func (s *RedisService) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	key := fmt.Sprintf(KeyAccount, username)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		account := models.NewAccount(username)

		created, err := s.createAccount(ctx, key, account)
		if err != nil {
			return nil, err
		}
		if created {
			return account, nil
		}
		// Lost the creation race; read the winner's record.
		data, err = s.client.Get(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get account: %v", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get account: %v", err)
	}

	var account models.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %v", err)
	}

	return &account, nil
}

func (s *RedisService) createAccount(ctx context.Context, key string, account *models.Account) (bool, error) {
	data, err := json.Marshal(account)
	if err != nil {
		return false, fmt.Errorf("failed to marshal account: %v", err)
	}

	created, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to create account: %v", err)
	}
	return created, nil
}

func (s *RedisService) SaveLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	entryKey := fmt.Sprintf(KeyLedgerEntry, entry.ID)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry: %v", err)
	}

	if err := s.client.Set(ctx, entryKey, data, TTLLedgerEntry).Err(); err != nil {
		return fmt.Errorf("failed to save ledger entry: %v", err)
	}

	logKey := fmt.Sprintf(KeyAccountLedger, entry.Username)
	if err := s.client.ZAdd(ctx, logKey, redis.Z{
		Score:  float64(entry.CreatedAt),
		Member: entry.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to append to account ledger: %v", err)
	}

	s.client.ZRemRangeByRank(ctx, logKey, 0, int64(-MaxLedgerHistory-1))

	return nil
}

func (s *RedisService) GetLedgerEntries(ctx context.Context, username string, limit int64) ([]*models.LedgerEntry, error) {
	if limit <= 0 || limit > MaxLedgerHistory {
		limit = 50
	}

	logKey := fmt.Sprintf(KeyAccountLedger, username)

	ids, err := s.client.ZRevRange(ctx, logKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry IDs: %v", err)
	}

	var entries []*models.LedgerEntry
	for _, id := range ids {
		data, err := s.client.Get(ctx, fmt.Sprintf(KeyLedgerEntry, id)).Result()
		if err != nil {
			continue
		}

		var entry models.LedgerEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}

func (s *RedisService) SaveUserAuth(ctx context.Context, auth *models.UserAuth) (bool, error) {
	key := fmt.Sprintf(KeyUserAuth, auth.Username)

	data, err := json.Marshal(auth)
	if err != nil {
		return false, fmt.Errorf("failed to marshal user auth: %v", err)
	}

	created, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to save user auth: %v", err)
	}
	return created, nil
}

func (s *RedisService) GetUserAuth(ctx context.Context, username string) (*models.UserAuth, error) {
	key := fmt.Sprintf(KeyUserAuth, username)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user auth: %v", err)
	}

	var auth models.UserAuth
	if err := json.Unmarshal([]byte(data), &auth); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user auth: %v", err)
	}

	return &auth, nil
}

func (s *RedisService) StoreUserSession(ctx context.Context, session *models.UserSession) error {
	key := fmt.Sprintf(KeyUserSession, session.Username, session.SessionID)

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, data, TTLUserSession).Err()
}

func (s *RedisService) GetUserSession(ctx context.Context, username, sessionID string) (*models.UserSession, error) {
	key := fmt.Sprintf(KeyUserSession, username, sessionID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var session models.UserSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}

	session.LastAccessed = time.Now().Unix()
	updatedData, _ := json.Marshal(session)
	s.client.Set(ctx, key, updatedData, TTLUserSession)

	return &session, nil
}

func (s *RedisService) DeleteUserSession(ctx context.Context, username, sessionID string) error {
	key := fmt.Sprintf(KeyUserSession, username, sessionID)
	return s.client.Del(ctx, key).Err()
}

func (s *RedisService) SaveUserBet(ctx context.Context, bet *models.Bet) error {
	data, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("failed to marshal bet: %v", err)
	}

	key := fmt.Sprintf(KeyAccountBets, bet.Username)
	if err := s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(bet.PlacedAt),
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("failed to save user bet: %v", err)
	}

	s.client.ZRemRangeByRank(ctx, key, 0, int64(-MaxBetHistory-1))

	return nil
}

func (s *RedisService) GetUserBets(ctx context.Context, username string, limit int64) ([]*models.Bet, error) {
	if limit <= 0 || limit > MaxBetHistory {
		limit = 50
	}

	key := fmt.Sprintf(KeyAccountBets, username)

	rows, err := s.client.ZRevRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user bets: %v", err)
	}

	var bets []*models.Bet
	for _, row := range rows {
		var bet models.Bet
		if err := json.Unmarshal([]byte(row), &bet); err != nil {
			continue
		}
		bets = append(bets, &bet)
	}

	return bets, nil
}

func (s *RedisService) GetCurrentRound(ctx context.Context) (*models.GameRound, error) {
	data, err := s.client.Get(ctx, KeyCurrentRound).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current round: %v", err)
	}

	var round models.GameRound
	if err := json.Unmarshal([]byte(data), &round); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round: %v", err)
	}

	return &round, nil
}

// CreateRoundIfAbsent installs the very first round; later rounds are
// swapped in by the engine's rotate script.
func (s *RedisService) CreateRoundIfAbsent(ctx context.Context, round *models.GameRound) (bool, error) {
	data, err := json.Marshal(round)
	if err != nil {
		return false, fmt.Errorf("failed to marshal round: %v", err)
	}

	created, err := s.client.SetNX(ctx, KeyCurrentRound, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to create round: %v", err)
	}
	return created, nil
}

func (s *RedisService) GetRoundBets(ctx context.Context, roundID string) ([]*models.Bet, error) {
	key := fmt.Sprintf(KeyRoundBets, roundID)

	rows, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get round bets: %v", err)
	}

	var bets []*models.Bet
	for _, row := range rows {
		var bet models.Bet
		if err := json.Unmarshal([]byte(row), &bet); err != nil {
			continue
		}
		bets = append(bets, &bet)
	}

	return bets, nil
}

func (s *RedisService) ArchiveRound(ctx context.Context, round *models.GameRound) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %v", err)
	}

	if err := s.client.ZAdd(ctx, KeyRoundHistory, redis.Z{
		Score:  float64(round.CreatedAt),
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("failed to archive round: %v", err)
	}

	s.client.ZRemRangeByRank(ctx, KeyRoundHistory, 0, int64(-MaxRoundHistory-1))

	// The per-round bet list is no longer needed once payouts are
	// durably recorded; let it expire rather than deleting eagerly.
	s.client.Expire(ctx, fmt.Sprintf(KeyRoundBets, round.RoundID), TTLRoundBets)

	return nil
}

func (s *RedisService) GetRecentRounds(ctx context.Context, limit int64) ([]*models.GameRound, error) {
	if limit <= 0 || limit > MaxRoundHistory {
		limit = 20
	}

	rows, err := s.client.ZRevRange(ctx, KeyRoundHistory, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get round history: %v", err)
	}

	var rounds []*models.GameRound
	for _, row := range rows {
		var round models.GameRound
		if err := json.Unmarshal([]byte(row), &round); err != nil {
			continue
		}
		rounds = append(rounds, &round)
	}

	return rounds, nil
}

func (s *RedisService) GetStoredParams(ctx context.Context) (*models.GameParams, error) {
	data, err := s.client.Get(ctx, KeyGameParams).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game params: %v", err)
	}

	var params models.GameParams
	if err := json.Unmarshal([]byte(data), &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game params: %v", err)
	}

	return &params, nil
}

func (s *RedisService) SaveParams(ctx context.Context, params models.GameParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal game params: %v", err)
	}

	return s.client.Set(ctx, KeyGameParams, data, 0).Err()
}

func (s *RedisService) CheckRateLimit(ctx context.Context, username, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, username, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) DeleteAccount(ctx context.Context, username string) error {
	return s.client.Del(ctx,
		fmt.Sprintf(KeyAccount, username),
		fmt.Sprintf(KeyAccountLedger, username),
		fmt.Sprintf(KeyAccountBets, username),
	).Err()
}

func (s *RedisService) ClearRateLimit(ctx context.Context, username, action string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyRateLimit, username, action)).Err()
}

// ClearCurrentRound drops the live round so tests can start from a
// known phase.
func (s *RedisService) ClearCurrentRound(ctx context.Context) error {
	return s.client.Del(ctx, KeyCurrentRound).Err()
}
