package api

import (
	"net/http"

	"forecastbonus/app"
	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/internal/errors"
	"forecastbonus/ports"

	"github.com/gin-gonic/gin"
)

// PayoutHandler serves payout computation and lookup
type PayoutHandler struct {
	payouts    *app.PayoutService
	payoutRepo ports.PayoutRepository
}

// NewPayoutHandler creates a new payout handler. payoutRepo may be nil when
// the server runs without a database.
func NewPayoutHandler(payouts *app.PayoutService, payoutRepo ports.PayoutRepository) *PayoutHandler {
	return &PayoutHandler{
		payouts:    payouts,
		payoutRepo: payoutRepo,
	}
}

// Batch computes payouts for a posted list of assignment records
func (h *PayoutHandler) Batch(c *gin.Context) {
	var assignments []*experiment.Assignment
	if err := c.ShouldBindJSON(&assignments); err != nil {
		respondError(c, errors.InvalidInput("invalid assignment list: "+err.Error()))
		return
	}
	for _, a := range assignments {
		if a == nil {
			respondError(c, errors.InvalidInput("assignment list contains null entries"))
			return
		}
	}

	payouts, err := h.payouts.ComputeBatch(c.Request.Context(), assignments)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.payouts.Summarize(payouts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payouts": payouts,
		"summary": summary,
	})
}

// ForAssignment computes and records the payout of a stored assignment
func (h *PayoutHandler) ForAssignment(c *gin.Context) {
	id, err := core.ParseAssignmentID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	p, err := h.payouts.PayoutForAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Latest returns the most recently recorded payout of an assignment
func (h *PayoutHandler) Latest(c *gin.Context) {
	if h.payoutRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payout storage is not configured"})
		return
	}
	id, err := core.ParseAssignmentID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	p, err := h.payoutRepo.GetLatestPayout(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
