package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

type AdminHandler struct {
	params *services.ParamsService
	house  *services.HouseFundService
}

func NewAdminHandler(params *services.ParamsService, house *services.HouseFundService) *AdminHandler {
	return &AdminHandler{
		params: params,
		house:  house,
	}
}

func (h *AdminHandler) GetParams(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"params":  h.params.Get(),
	})
}

func (h *AdminHandler) UpdateParams(c *gin.Context) {
	var req models.GameParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	// Out-of-range values are clamped, not rejected; the response
	// carries the values actually applied.
	applied, err := h.params.Update(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update params",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"params":  applied,
	})
}

func (h *AdminHandler) ReloadParams(c *gin.Context) {
	params, err := h.params.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload params",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"params":  params,
	})
}

func (h *AdminHandler) GetHouseFund(c *gin.Context) {
	fund, err := h.house.Balance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get house fund",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"fund": gin.H{
			"balance_minor_units": fund.Balance,
			"balance_usd":         float64(fund.Balance) / services.MinorUnitsPerUSD,
			"updated_at":          fund.UpdatedAt,
		},
	})
}

func (h *AdminHandler) DepositHouseFund(c *gin.Context) {
	var req models.HouseAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	balance, err := h.house.DepositUSD(c.Request.Context(), req.USD)
	if err != nil {
		writeServiceError(c, "deposit to house fund", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"new_balance": balance,
	})
}

func (h *AdminHandler) WithdrawHouseFund(c *gin.Context) {
	var req models.HouseAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	balance, err := h.house.WithdrawUSD(c.Request.Context(), req.USD)
	if err != nil {
		writeServiceError(c, "withdraw from house fund", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"new_balance": balance,
	})
}

func (h *AdminHandler) GetHouseTransactions(c *gin.Context) {
	limit := parseLimit(c, 50)

	txs, err := h.house.Transactions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get house transactions",
			"details": err.Error(),
		})
		return
	}

	var response []gin.H
	for _, tx := range txs {
		response = append(response, gin.H{
			"id":            tx.ID,
			"delta":         tx.Delta,
			"reason":        tx.Reason,
			"metadata":      tx.Metadata,
			"balance_after": tx.BalanceAfter,
			"created_at":    tx.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": response,
		"count":        len(response),
	})
}
