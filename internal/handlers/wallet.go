package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snipercontrol/internal/engine"
)

// CreateWalletRequest represents the request body for wallet creation
type CreateWalletRequest struct {
	UserID     uint   `json:"user_id" binding:"required"`
	WalletName string `json:"wallet_name"`
}

// CreateWallet generates a new wallet for a user
func CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := walletSvc.CreateWallet(req.UserID, req.WalletName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, wallet)
}

// ImportWalletRequest represents the request body for wallet import
type ImportWalletRequest struct {
	UserID     uint   `json:"user_id" binding:"required"`
	WalletName string `json:"wallet_name"`
	PrivateKey string `json:"private_key" binding:"required"`
}

// ImportWallet stores an existing private key for a user
func ImportWallet(c *gin.Context) {
	var req ImportWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := walletSvc.ImportWallet(req.UserID, req.WalletName, req.PrivateKey)
	if err != nil {
		var validationErr *engine.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, wallet)
}

// ListWallets returns a user's wallets (keys excluded)
func ListWallets(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	wallets, err := walletSvc.GetWallets(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wallets)
}

// RecordBalanceRequest represents the request body for balance updates
type RecordBalanceRequest struct {
	UserID     uint    `json:"user_id" binding:"required"`
	BalanceSol float64 `json:"balance_sol"`
}

// RecordWalletBalance persists the latest observed SOL balance
func RecordWalletBalance(c *gin.Context) {
	walletID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RecordBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := walletSvc.RecordBalance(walletID, req.UserID, req.BalanceSol); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Balance recorded"})
}
