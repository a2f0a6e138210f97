package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mango-roulette-backend/internal/services"
)

// writeServiceError maps the service error taxonomy onto HTTP
// responses, always carrying the structured figures the client needs to
// render an actionable message.
func writeServiceError(c *gin.Context, action string, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.Msg,
		})
		return
	}

	var insufficientBalance *services.InsufficientBalanceError
	if errors.As(err, &insufficientBalance) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Insufficient balance",
			"currency": insufficientBalance.Currency,
			"current":  insufficientBalance.Current,
			"required": insufficientBalance.Required,
		})
		return
	}

	var insufficientFunds *services.InsufficientFundsError
	if errors.As(err, &insufficientFunds) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "Insufficient funds",
			"currency":         insufficientFunds.Currency,
			"current":          insufficientFunds.Current,
			"required":         insufficientFunds.Required,
			"progress_percent": insufficientFunds.ProgressPercent,
		})
		return
	}

	var roundClosed *services.RoundClosedError
	if errors.As(err, &roundClosed) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "Round closed for betting",
			"phase":       roundClosed.Phase,
			"retry_after": roundClosed.RetryAfterSeconds,
		})
		return
	}

	var alreadyClaimed *services.AlreadyClaimedError
	if errors.As(err, &alreadyClaimed) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "Daily reward already claimed",
			"retry_after": alreadyClaimed.RetryAfterSeconds,
		})
		return
	}

	var fundDepleted *services.FundDepletedError
	if errors.As(err, &fundDepleted) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "House fund cannot cover this request",
			"current":   fundDepleted.Current,
			"requested": fundDepleted.Requested,
		})
		return
	}

	var incomplete *services.ConversionIncompleteError
	if errors.As(err, &incomplete) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":           "Conversion incomplete, contact support",
			"debit_currency":  incomplete.DebitCurrency,
			"debit_amount":    incomplete.DebitAmount,
			"credit_currency": incomplete.CreditCurrency,
			"credit_amount":   incomplete.CreditAmount,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to " + action,
		"details": err.Error(),
	})
}
