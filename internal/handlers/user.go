package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mango-roulette-backend/internal/services"
)

type UserHandler struct {
	redisService *services.RedisService
	rewards      *services.RewardScheduler
}

func NewUserHandler(redisService *services.RedisService, rewards *services.RewardScheduler) *UserHandler {
	return &UserHandler{
		redisService: redisService,
		rewards:      rewards,
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	username := c.GetString("username")
	sessionID := c.GetString("session_id")

	session, err := h.redisService.GetUserSession(c.Request.Context(), username, sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
		return
	}

	account, err := h.redisService.GetAccount(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load account",
			"details": err.Error(),
		})
		return
	}

	canClaim, retryAfter, err := h.rewards.CanClaim(c.Request.Context(), username)
	if err != nil {
		canClaim = false
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"is_admin": session.IsAdmin,
		"session": gin.H{
			"session_id":    session.SessionID,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessed,
		},
		"balances": gin.H{
			"mangos":           account.Mangos,
			"mango_juice":      account.MangoJuice,
			"fermented_mangos": account.FermentedMangos,
			"expired_juice":    account.ExpiredJuice,
		},
		"daily": gin.H{
			"can_claim":   canClaim,
			"retry_after": retryAfter,
			"streak":      account.DailyStreak,
		},
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	username := c.GetString("username")
	sessionID := c.GetString("session_id")

	if err := h.redisService.DeleteUserSession(c.Request.Context(), username, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
