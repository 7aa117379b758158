package routes

import (
	"github.com/gin-gonic/gin"

	"snipercontrol/internal/handlers"
)

// SetupSniperRoutes sets up engine lifecycle and sniper config routes
func SetupSniperRoutes(r *gin.Engine) {
	sniper := r.Group("/sniper")
	{
		sniper.POST("/start", handlers.StartEngine)
		sniper.POST("/stop", handlers.StopEngine)
		sniper.GET("/status", handlers.EngineStatus)
	}

	configs := r.Group("/sniper-configs")
	{
		configs.GET("/user/:user_id", handlers.ListSniperConfigs)
		configs.GET("/:id", handlers.GetSniperConfig)
		configs.POST("", handlers.CreateSniperConfig)
		configs.PUT("/:id", handlers.UpdateSniperConfig)
		configs.DELETE("/:id", handlers.DeleteSniperConfig)
	}
}
