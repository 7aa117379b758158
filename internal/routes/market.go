package routes

import (
	"github.com/gin-gonic/gin"

	"snipercontrol/internal/handlers"
)

// SetupMarketRoutes sets up market data and RPC utility routes
func SetupMarketRoutes(r *gin.Engine) {
	market := r.Group("/market")
	{
		market.GET("/price/:address", handlers.GetTokenPrice)
		market.POST("/check-rpc", handlers.CheckRPCList)
	}
}
