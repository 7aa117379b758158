package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	scsolana "snipercontrol/pkg/solana"
)

// CheckRPCListRequest represents the request body for RPC health checks
type CheckRPCListRequest struct {
	RPCList []string `json:"rpc_list" binding:"required"`
	Timeout int      `json:"timeout_seconds"`
}

// CheckRPCList probes each RPC endpoint concurrently and reports
// health and latency
func CheckRPCList(c *gin.Context) {
	var req CheckRPCListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeout := 5 * time.Second
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout) * time.Second
	}

	results := scsolana.CheckRPCListAsync(c.Request.Context(), req.RPCList, timeout)
	c.JSON(http.StatusOK, results)
}

// GetTokenPrice returns oracle market data for a token
func GetTokenPrice(c *gin.Context) {
	tokenAddress := c.Param("address")
	if tokenAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token address is required"})
		return
	}

	price, cached, err := oracle.GetTokenPrice(tokenAddress)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"price":  price,
		"cached": cached,
	})
}
