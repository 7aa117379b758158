package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartEngine starts the position monitor and the sniper engine.
// Idempotent: starting a running engine is a no-op.
func StartEngine(c *gin.Context) {
	if err := monitor.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sniperEngine != nil {
		sniperEngine.Start()
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopEngine stops the position monitor and the sniper engine.
func StopEngine(c *gin.Context) {
	monitor.Stop()
	if sniperEngine != nil {
		sniperEngine.Stop()
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// EngineStatus reports whether the monitor and sniper are running.
func EngineStatus(c *gin.Context) {
	sniperRunning := false
	if sniperEngine != nil {
		sniperRunning = sniperEngine.IsRunning()
	}
	c.JSON(http.StatusOK, gin.H{
		"monitor_running": monitor.IsRunning(),
		"sniper_running":  sniperRunning,
	})
}
