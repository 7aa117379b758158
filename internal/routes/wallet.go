package routes

import (
	"github.com/gin-gonic/gin"

	"snipercontrol/internal/handlers"
)

// SetupWalletRoutes sets up all routes related to wallet management
func SetupWalletRoutes(r *gin.Engine) {
	wallets := r.Group("/wallets")
	{
		wallets.POST("", handlers.CreateWallet)
		wallets.POST("/import", handlers.ImportWallet)
		wallets.GET("/user/:user_id", handlers.ListWallets)
		wallets.PUT("/:id/balance", handlers.RecordWalletBalance)
	}
}
