package routes

import (
	"github.com/gin-gonic/gin"

	"snipercontrol/internal/handlers"
)

// SetupPositionRoutes sets up all routes related to position management
func SetupPositionRoutes(r *gin.Engine) {
	positions := r.Group("/positions")
	{
		positions.GET("/open/:user_id", handlers.ListOpenPositions)
		positions.GET("/:id/live/:user_id", handlers.GetPositionLive)
		positions.PUT("/:id/levels", handlers.UpdatePositionLevels)
		positions.POST("/:id/close", handlers.ClosePosition)
	}
}
