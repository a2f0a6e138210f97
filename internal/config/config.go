package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	RedisURL  string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret  string   `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AdminUsers []string `env:"ADMIN_USERS" envSeparator:"," envDefault:"admin"`

	// Round timing defaults, in seconds. Admins can retune these at
	// runtime within the validation ranges in models.GameParams.Clamp.
	BettingDuration int64 `env:"BETTING_DURATION" envDefault:"210"`
	LockedDuration  int64 `env:"LOCKED_DURATION" envDefault:"30"`
	SpinDuration    int64 `env:"SPIN_DURATION" envDefault:"15"`
	ResultDuration  int64 `env:"RESULT_DURATION" envDefault:"45"`

	MaxBetReal          int64   `env:"MAX_BET_REAL" envDefault:"100000"`
	MaxBetTrial         int64   `env:"MAX_BET_TRIAL" envDefault:"1000000"`
	ProtectionThreshold float64 `env:"PROTECTION_THRESHOLD" envDefault:"0.5"`

	// Currency conversion constants. Exposed as config so rates can be
	// changed per deployment without touching the converter.
	RequiredExpiredJuice int64 `env:"EXPIRED_JUICE_TO_REAL_JUICE" envDefault:"100"`
	ExpiredJuiceOutput   int64 `env:"EXPIRED_JUICE_OUTPUT" envDefault:"10"`
	JuiceToMangoRate     int64 `env:"MANGO_JUICE_TO_MANGO" envDefault:"1"`
	JuicePerUSD          int64 `env:"MANGO_JUICE_TO_USD" envDefault:"100"`
	MinWithdrawJuice     int64 `env:"MIN_WITHDRAW_JUICE" envDefault:"1000"`

	DailyRewardBase int64 `env:"DAILY_REWARD_BASE" envDefault:"50"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RequiredExpiredJuice < 1 || cfg.ExpiredJuiceOutput < 1 {
		return nil, fmt.Errorf("conversion constants must be positive")
	}
	if cfg.JuiceToMangoRate < 1 || cfg.JuicePerUSD < 1 {
		return nil, fmt.Errorf("conversion rates must be positive")
	}

	return cfg, nil
}

func (c *Config) IsAdmin(username string) bool {
	for _, u := range c.AdminUsers {
		if u == username {
			return true
		}
	}
	return false
}

type TopUpPackage struct {
	ID           string `json:"id"`
	USD          int64  `json:"usd"`
	BaseMangos   int64  `json:"base_mangos"`
	BonusPercent int64  `json:"bonus_percent"`
}

// GrantedMangos is the amount actually credited for the package:
// base plus the floored bonus.
func (p TopUpPackage) GrantedMangos() int64 {
	return p.BaseMangos + p.BaseMangos*p.BonusPercent/100
}

var topUpPackages = []TopUpPackage{
	{ID: "starter", USD: 5, BaseMangos: 5000, BonusPercent: 0},
	{ID: "regular", USD: 10, BaseMangos: 10000, BonusPercent: 5},
	{ID: "plus", USD: 25, BaseMangos: 25000, BonusPercent: 10},
	{ID: "premium", USD: 50, BaseMangos: 50000, BonusPercent: 15},
	{ID: "whale", USD: 100, BaseMangos: 100000, BonusPercent: 25},
}

// Packages returns the ordered top-up package list.
func (c *Config) Packages() []TopUpPackage {
	return topUpPackages
}

// FindPackage looks a package up by id, preserving list order for display.
func (c *Config) FindPackage(id string) (TopUpPackage, bool) {
	for _, p := range topUpPackages {
		if p.ID == id {
			return p, true
		}
	}
	return TopUpPackage{}, false
}
