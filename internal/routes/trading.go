package routes

import (
	"github.com/gin-gonic/gin"

	"snipercontrol/internal/handlers"
)

// SetupTradingRoutes sets up all routes related to trade execution
func SetupTradingRoutes(r *gin.Engine) {
	trades := r.Group("/trades")
	{
		trades.POST("/execute", handlers.ExecuteTrade)
		trades.POST("/estimate-cost", handlers.EstimateTradeCost)
		trades.GET("/history/:user_id", handlers.GetTradingHistory)
		trades.GET("/fee-stats", handlers.GetFeeStats)
	}
}
