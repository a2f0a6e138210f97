package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

type GameHandler struct {
	engine       *services.RoundEngine
	redisService *services.RedisService
}

func NewGameHandler(engine *services.RoundEngine, redisService *services.RedisService) *GameHandler {
	return &GameHandler{
		engine:       engine,
		redisService: redisService,
	}
}

func (h *GameHandler) GetRound(c *gin.Context) {
	round, remaining, err := h.engine.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load round",
			"details": err.Error(),
		})
		return
	}

	payload := gin.H{
		"round_id":        round.RoundID,
		"phase":           round.Phase,
		"remaining":       remaining,
		"betting_ends_at": round.BettingEndsAt,
		"result_ends_at":  round.ResultEndsAt,
	}

	// The outcome is only visible once the wheel is spinning.
	if round.Phase == models.PhaseSpinning || round.Phase == models.PhaseResult {
		payload["winning_outcome"] = round.WinningOutcome
		payload["secondary_outcome"] = round.SecondaryOutcome
		payload["outcome_hash"] = round.OutcomeHash
	}

	if round.Phase == models.PhaseResult {
		payload["total_staked"] = round.TotalStaked
		payload["total_paid"] = round.TotalPaid
		payload["payout_scale"] = round.PayoutScale
		payload["bet_count"] = round.BetCount
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"round":   payload,
	})
}

func (h *GameHandler) PlaceBet(c *gin.Context) {
	username := c.GetString("username")

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	allowed, err := h.redisService.CheckRateLimit(c.Request.Context(), username, "bet",
		services.DefaultRateLimitBets, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many bets. Please wait."})
		return
	}

	bet, newBalance, err := h.engine.PlaceBet(c.Request.Context(), username, &req)
	if err != nil {
		writeServiceError(c, "place bet", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bet": gin.H{
			"id":            bet.ID,
			"round_id":      bet.RoundID,
			"type":          bet.Type,
			"amount":        bet.Amount,
			"target_number": bet.TargetNumber,
			"currency":      bet.Currency,
			"placed_at":     bet.PlacedAt,
		},
		"new_balance": newBalance,
	})
}

func (h *GameHandler) GetRecentRounds(c *gin.Context) {
	limit := parseLimit(c, 20)

	rounds, err := h.engine.RecentRounds(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load round history",
			"details": err.Error(),
		})
		return
	}

	var response []gin.H
	for _, round := range rounds {
		response = append(response, gin.H{
			"round_id":          round.RoundID,
			"winning_outcome":   round.WinningOutcome,
			"secondary_outcome": round.SecondaryOutcome,
			"total_staked":      round.TotalStaked,
			"total_paid":        round.TotalPaid,
			"payout_scale":      round.PayoutScale,
			"bet_count":         round.BetCount,
			"created_at":        round.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rounds":  response,
		"count":   len(response),
	})
}

func (h *GameHandler) GetMyBets(c *gin.Context) {
	username := c.GetString("username")
	limit := parseLimit(c, 50)

	bets, err := h.engine.UserBets(c.Request.Context(), username, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load bet history",
			"details": err.Error(),
		})
		return
	}

	var response []gin.H
	for _, bet := range bets {
		result := "lose"
		if bet.Win {
			result = "win"
		}

		response = append(response, gin.H{
			"id":            bet.ID,
			"round_id":      bet.RoundID,
			"type":          bet.Type,
			"amount":        bet.Amount,
			"target_number": bet.TargetNumber,
			"currency":      bet.Currency,
			"result":        result,
			"payout":        bet.Payout,
			"placed_at":     bet.PlacedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bets":    response,
		"count":   len(response),
	})
}

func (h *GameHandler) GetVerificationData(c *gin.Context) {
	round, _, err := h.engine.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load round",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"server_hash": h.engine.GetServerHash(),
			"round_id":    round.RoundID,
			"nonce":       round.Nonce,
		},
	})
}

func (h *GameHandler) VerifyOutcome(c *gin.Context) {
	var req models.VerifyOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	outcome, secondary, hash := h.engine.VerifyOutcome(req.ServerSeed, req.RoundID, req.Nonce)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"verification": gin.H{
			"winning_outcome":   outcome,
			"secondary_outcome": secondary,
			"calculated_hash":   hash,
			"round_id":          req.RoundID,
			"nonce":             req.Nonce,
		},
	})
}

func parseLimit(c *gin.Context, fallback int64) int64 {
	limitStr := c.DefaultQuery("limit", strconv.FormatInt(fallback, 10))
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}
