package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snipercontrol/internal/engine"
	scsolana "snipercontrol/pkg/solana"
)

// ExecuteTradeRequest represents the request body for trade execution
type ExecuteTradeRequest struct {
	UserID            uint     `json:"user_id" binding:"required"`
	WalletID          uint     `json:"wallet_id" binding:"required"`
	TokenAddress      string   `json:"token_address" binding:"required"`
	TradeType         string   `json:"trade_type" binding:"required"`
	AmountSol         float64  `json:"amount_sol" binding:"required"`
	AmountTokens      float64  `json:"amount_tokens"`
	SlippageBps       *int     `json:"slippage_bps"`
	Speed             string   `json:"speed"`
	MevProtection     bool     `json:"mev_protection"`
	TakeProfitPercent *float64 `json:"take_profit_percent"`
	StopLossPercent   *float64 `json:"stop_loss_percent"`
}

// ExecuteTrade runs a trade through the engine
func ExecuteTrade(c *gin.Context) {
	var req ExecuteTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slippageBps := 500
	if req.SlippageBps != nil {
		slippageBps = *req.SlippageBps
	}

	result, err := tradeEngine.ExecuteTrade(context.Background(), engine.TradeParams{
		UserID:            req.UserID,
		WalletID:          req.WalletID,
		TokenAddress:      req.TokenAddress,
		TradeType:         req.TradeType,
		AmountSol:         req.AmountSol,
		AmountTokens:      req.AmountTokens,
		SlippageBps:       slippageBps,
		Speed:             req.Speed,
		MevProtection:     req.MevProtection,
		TakeProfitPercent: req.TakeProfitPercent,
		StopLossPercent:   req.StopLossPercent,
	})
	if err != nil {
		var validationErr *engine.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTradingHistory returns a user's trades with pagination
func GetTradingHistory(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	trades, total, err := tradeEngine.GetTradingHistory(uint(userID), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trades": trades,
		"total":  total,
	})
}

// GetFeeStats returns the total platform fees collected
func GetFeeStats(c *gin.Context) {
	total, err := tradeEngine.GetTotalFeesCollected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_fees_sol": total})
}

// EstimateCostRequest represents the request body for cost estimation
type EstimateCostRequest struct {
	Speed            string `json:"speed"`
	MevProtection    bool   `json:"mev_protection"`
	ComputeUnitLimit uint32 `json:"compute_unit_limit"`
	RPCURL           string `json:"rpc_url"`
}

// EstimateTradeCost returns the expected network cost for a trade at
// the requested speed tier
func EstimateTradeCost(c *gin.Context) {
	var req EstimateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rpcURL := req.RPCURL
	if rpcURL == "" {
		rpcURL = "https://api.mainnet-beta.solana.com"
	}

	stats := scsolana.GetRecentPriorityFees(c.Request.Context(), rpcURL)
	preset := scsolana.GetSpeedPreset(req.Speed, stats)
	estimate := scsolana.EstimateTransactionCost(preset, req.MevProtection, req.ComputeUnitLimit)

	c.JSON(http.StatusOK, gin.H{
		"speed":    req.Speed,
		"preset":   preset,
		"stats":    stats,
		"estimate": estimate,
	})
}
