package services

import "time"

const (
	KeyUserAuth    = "user:%s:auth"
	KeyUserSession = "user:%s:session:%s"

	KeyAccount       = "account:%s"
	KeyAccountLedger = "account:%s:ledger"
	KeyAccountBets   = "account:%s:bets"
	KeyLedgerEntry   = "ledger:%s"

	KeyHouseFund  = "house:fund"
	KeyHouseTx    = "house:tx:%s"
	KeyHouseTxLog = "house:transactions"

	KeyCurrentRound = "game:round:current"
	KeyRoundNonce   = "game:round:nonce"
	KeyRoundBets    = "game:round:%s:bets"
	KeyRoundHistory = "game:rounds:history"
	KeyGameParams   = "game:params"

	KeyRateLimit = "ratelimit:%s:%s"

	TTLUserSession = 24 * time.Hour
	TTLLedgerEntry = 30 * 24 * time.Hour // 30 days
	TTLHouseTx     = 90 * 24 * time.Hour // 90 days
	TTLRoundBets   = 24 * time.Hour

	MaxLedgerHistory  = 200
	MaxBetHistory     = 100
	MaxRoundHistory   = 100
	MaxHouseTxHistory = 500

	DefaultRateLimitBets     = 30 // Max 30 bets per minute
	DefaultRateLimitConverts = 10 // Max 10 conversions per minute
	DefaultRateLimitClaims   = 5  // Max 5 claim attempts per minute
)
