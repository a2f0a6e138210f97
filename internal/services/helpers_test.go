package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		RedisURL: "localhost:6379",
		RedisDB:  15,

		BettingDuration: 210,
		LockedDuration:  30,
		SpinDuration:    15,
		ResultDuration:  45,

		MaxBetReal:          100000,
		MaxBetTrial:         1000000,
		ProtectionThreshold: 0.5,

		RequiredExpiredJuice: 100,
		ExpiredJuiceOutput:   10,
		JuiceToMangoRate:     1,
		JuicePerUSD:          100,
		MinWithdrawJuice:     1000,

		DailyRewardBase: 50,
	}
}

// newTestRedis connects to the local Redis test database, skipping the
// test when none is running.
func newTestRedis(t *testing.T) (*services.RedisService, *config.Config) {
	t.Helper()

	cfg := testConfig()
	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { redisService.Close() })

	return redisService, cfg
}

// testUsername is unique per call so parallel test runs never share an
// account.
func testUsername(t *testing.T, redisService *services.RedisService, prefix string) string {
	t.Helper()

	username := fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
	t.Cleanup(func() {
		redisService.DeleteAccount(context.Background(), username)
	})

	return username
}
