package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mango-roulette-backend/internal/config"
	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

type WalletHandler struct {
	ledger       *services.Ledger
	converter    *services.Converter
	redisService *services.RedisService
	cfg          *config.Config
}

func NewWalletHandler(ledger *services.Ledger, converter *services.Converter, redisService *services.RedisService, cfg *config.Config) *WalletHandler {
	return &WalletHandler{
		ledger:       ledger,
		converter:    converter,
		redisService: redisService,
		cfg:          cfg,
	}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	username := c.GetString("username")

	account, err := h.ledger.GetAccount(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get account",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balances": gin.H{
			"mangos":           account.Mangos,
			"mango_juice":      account.MangoJuice,
			"fermented_mangos": account.FermentedMangos,
			"expired_juice":    account.ExpiredJuice,
		},
	})
}

func (h *WalletHandler) ConvertExpired(c *gin.Context) {
	username := c.GetString("username")

	allowed, err := h.redisService.CheckRateLimit(c.Request.Context(), username, "convert",
		services.DefaultRateLimitConverts, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many conversions. Please wait."})
		return
	}

	result, err := h.converter.ExpiredToJuice(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, "convert expired juice", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"conversion": result,
	})
}

func (h *WalletHandler) ConvertJuice(c *gin.Context) {
	username := c.GetString("username")

	var req models.ConvertJuiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	allowed, err := h.redisService.CheckRateLimit(c.Request.Context(), username, "convert",
		services.DefaultRateLimitConverts, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many conversions. Please wait."})
		return
	}

	result, err := h.converter.JuiceToMango(c.Request.Context(), username, req.Amount)
	if err != nil {
		writeServiceError(c, "convert mango juice", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"conversion": result,
	})
}

func (h *WalletHandler) TopUp(c *gin.Context) {
	username := c.GetString("username")

	var req models.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	pkg, found := h.cfg.FindPackage(req.PackageID)
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown top-up package"})
		return
	}

	granted := pkg.GrantedMangos()
	balance, err := h.ledger.Adjust(c.Request.Context(), username, models.CurrencyMango,
		granted, models.ReasonTopUp,
		fmt.Sprintf("package=%s usd=%d bonus=%d%%", pkg.ID, pkg.USD, pkg.BonusPercent))
	if err != nil {
		writeServiceError(c, "top up", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"package":        pkg.ID,
		"granted_mangos": granted,
		"new_balance":    balance,
	})
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	username := c.GetString("username")

	var req models.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.converter.WithdrawJuice(c.Request.Context(), username, req.Amount)
	if err != nil {
		writeServiceError(c, "withdraw", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"withdrawal": result,
	})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	username := c.GetString("username")
	limit := parseLimit(c, 50)

	entries, err := h.ledger.GetEntries(c.Request.Context(), username, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get transactions",
			"details": err.Error(),
		})
		return
	}

	var response []gin.H
	for _, entry := range entries {
		response = append(response, gin.H{
			"id":            entry.ID,
			"currency":      entry.Currency,
			"delta":         entry.Delta,
			"balance_after": entry.BalanceAfter,
			"reason":        entry.Reason,
			"details":       entry.Details,
			"created_at":    entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": response,
		"count":        len(response),
	})
}

func (h *WalletHandler) GetPackages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"packages": h.cfg.Packages(),
	})
}
