package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mango-roulette-backend/internal/services"
)

type RewardsHandler struct {
	rewards      *services.RewardScheduler
	redisService *services.RedisService
}

func NewRewardsHandler(rewards *services.RewardScheduler, redisService *services.RedisService) *RewardsHandler {
	return &RewardsHandler{
		rewards:      rewards,
		redisService: redisService,
	}
}

func (h *RewardsHandler) GetDailyStatus(c *gin.Context) {
	username := c.GetString("username")

	canClaim, retryAfter, err := h.rewards.CanClaim(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to check daily reward",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"can_claim":   canClaim,
		"retry_after": retryAfter,
	})
}

func (h *RewardsHandler) ClaimDaily(c *gin.Context) {
	username := c.GetString("username")

	allowed, err := h.redisService.CheckRateLimit(c.Request.Context(), username, "claim",
		services.DefaultRateLimitClaims, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many claim attempts. Please wait."})
		return
	}

	result, err := h.rewards.Claim(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, "claim daily reward", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"claim":   result,
	})
}
