package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"snipercontrol/internal/models"
	dbconfig "snipercontrol/pkg/config"
)

// SniperConfigRequest represents the request body for sniper config
// operations; pointer fields allow partial updates
type SniperConfigRequest struct {
	UserID                        uint     `json:"user_id" binding:"required"`
	WalletID                      *uint    `json:"wallet_id"`
	IsActive                      *bool    `json:"is_active"`
	AutoSnipeEnabled              *bool    `json:"auto_snipe_enabled"`
	MinLiquiditySol               *float64 `json:"min_liquidity_sol"`
	MaxBuyAmountSol               *float64 `json:"max_buy_amount_sol"`
	SlippageBps                   *int     `json:"slippage_bps"`
	TakeProfitPercentage          *float64 `json:"take_profit_percentage"`
	StopLossPercentage            *float64 `json:"stop_loss_percentage"`
	RugCheckEnabled               *bool    `json:"rug_check_enabled"`
	MevProtection                 *bool    `json:"mev_protection"`
	TransactionSpeed              *string  `json:"transaction_speed"`
	JitoTipLamports               *uint64  `json:"jito_tip_lamports"`
	ComputeUnitPriceMicroLamports *uint64  `json:"compute_unit_price_micro_lamports"`
	ComputeUnitLimit              *uint32  `json:"compute_unit_limit"`
	UsePrivateRpc                 *bool    `json:"use_private_rpc"`
}

// ListSniperConfigs returns all sniper configs for a user
func ListSniperConfigs(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var configs []models.SniperConfig
	if err := dbconfig.DB.Where("user_id = ?", userID).Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, configs)
}

// GetSniperConfig returns a single sniper config
func GetSniperConfig(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var config models.SniperConfig
	if err := dbconfig.DB.First(&config, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sniper config not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config)
}

// CreateSniperConfig creates a new sniper config
func CreateSniperConfig(c *gin.Context) {
	var req SniperConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WalletID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet_id is required"})
		return
	}

	config := models.SniperConfig{
		UserID:   req.UserID,
		WalletID: *req.WalletID,
	}
	applySniperConfigUpdates(&config, &req)

	if err := dbconfig.DB.Create(&config).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, config)
}

// UpdateSniperConfig updates a sniper config; unset fields retain
// prior values
func UpdateSniperConfig(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SniperConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var config models.SniperConfig
	if err := dbconfig.DB.Where("id = ? AND user_id = ?", id, req.UserID).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sniper config not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.WalletID != nil {
		config.WalletID = *req.WalletID
	}
	applySniperConfigUpdates(&config, &req)

	if err := dbconfig.DB.Save(&config).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config)
}

// DeleteSniperConfig removes a sniper config
func DeleteSniperConfig(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := dbconfig.DB.Delete(&models.SniperConfig{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sniper config not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sniper config deleted"})
}

func applySniperConfigUpdates(config *models.SniperConfig, req *SniperConfigRequest) {
	if req.IsActive != nil {
		config.IsActive = *req.IsActive
	}
	if req.AutoSnipeEnabled != nil {
		config.AutoSnipeEnabled = *req.AutoSnipeEnabled
	}
	if req.MinLiquiditySol != nil {
		config.MinLiquiditySol = *req.MinLiquiditySol
	}
	if req.MaxBuyAmountSol != nil {
		config.MaxBuyAmountSol = *req.MaxBuyAmountSol
	}
	if req.SlippageBps != nil {
		config.SlippageBps = *req.SlippageBps
	}
	if req.TakeProfitPercentage != nil {
		config.TakeProfitPercentage = *req.TakeProfitPercentage
	}
	if req.StopLossPercentage != nil {
		config.StopLossPercentage = *req.StopLossPercentage
	}
	if req.RugCheckEnabled != nil {
		config.RugCheckEnabled = *req.RugCheckEnabled
	}
	if req.MevProtection != nil {
		config.MevProtection = *req.MevProtection
	}
	if req.TransactionSpeed != nil {
		config.TransactionSpeed = *req.TransactionSpeed
	}
	if req.JitoTipLamports != nil {
		config.JitoTipLamports = *req.JitoTipLamports
	}
	if req.ComputeUnitPriceMicroLamports != nil {
		config.ComputeUnitPriceMicroLamports = *req.ComputeUnitPriceMicroLamports
	}
	if req.ComputeUnitLimit != nil {
		config.ComputeUnitLimit = *req.ComputeUnitLimit
	}
	if req.UsePrivateRpc != nil {
		config.UsePrivateRpc = *req.UsePrivateRpc
	}
}
