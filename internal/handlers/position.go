package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snipercontrol/internal/engine"
	"snipercontrol/internal/models"
)

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// ListOpenPositions returns all OPEN positions for a user
func ListOpenPositions(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	positions, err := tradeEngine.GetOpenPositions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, positions)
}

// GetPositionLive returns a position with unrealized P/L at the current
// oracle price
func GetPositionLive(c *gin.Context) {
	positionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	live, err := tradeEngine.GetPositionWithLiveData(positionID, userID)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Position not found"})
			return
		}
		var oracleErr *engine.OracleError
		if errors.As(err, &oracleErr) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, live)
}

// UpdatePositionLevelsRequest represents the request body for level
// updates; unset fields keep their prior values
type UpdatePositionLevelsRequest struct {
	UserID            uint     `json:"user_id" binding:"required"`
	TakeProfitPercent *float64 `json:"take_profit_percent"`
	StopLossPercent   *float64 `json:"stop_loss_percent"`
}

// UpdatePositionLevels replaces take-profit/stop-loss on an open position
func UpdatePositionLevels(c *gin.Context) {
	positionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePositionLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position, err := tradeEngine.UpdatePositionLevels(positionID, req.UserID, req.TakeProfitPercent, req.StopLossPercent)
	if err != nil {
		var validationErr *engine.ValidationError
		switch {
		case errors.Is(err, engine.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Position not found"})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, position)
}

// ClosePositionRequest represents the request body for a manual close
type ClosePositionRequest struct {
	UserID uint    `json:"user_id" binding:"required"`
	Reason *string `json:"reason"`
}

// ClosePosition sells a position's holdings and marks it CLOSED
func ClosePosition(c *gin.Context) {
	positionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ClosePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reason := models.CloseReasonManual
	if req.Reason != nil {
		reason = *req.Reason
	}

	result, err := tradeEngine.ClosePosition(context.Background(), positionID, req.UserID, reason)
	if err != nil {
		var validationErr *engine.ValidationError
		switch {
		case errors.Is(err, engine.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Position not found or already closed"})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
