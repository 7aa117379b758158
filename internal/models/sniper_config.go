package models

import (
	"time"
)

// SniperConfig holds per-user trade parameters consumed by the engine:
// speed tier, MEV protection, numeric overrides for priority fee, compute
// budget and tip size, plus default take-profit/stop-loss levels.
type SniperConfig struct {
	ID                            uint      `gorm:"primarykey" json:"id"`
	UserID                        uint      `gorm:"not null;index" json:"user_id"`
	WalletID                      uint      `gorm:"not null" json:"wallet_id"`
	IsActive                      bool      `gorm:"default:true" json:"is_active"`
	AutoSnipeEnabled              bool      `gorm:"default:false" json:"auto_snipe_enabled"`
	MinLiquiditySol               float64   `gorm:"default:5" json:"min_liquidity_sol"`
	MaxBuyAmountSol               float64   `gorm:"default:1" json:"max_buy_amount_sol"`
	SlippageBps                   int       `gorm:"default:500" json:"slippage_bps"`
	TakeProfitPercentage          float64   `gorm:"default:100" json:"take_profit_percentage"`
	StopLossPercentage            float64   `gorm:"default:50" json:"stop_loss_percentage"`
	RugCheckEnabled               bool      `gorm:"default:true" json:"rug_check_enabled"`
	MevProtection                 bool      `gorm:"default:false" json:"mev_protection"`
	TransactionSpeed              string    `gorm:"type:varchar(20);default:'standard'" json:"transaction_speed"`
	JitoTipLamports               uint64    `gorm:"default:10000" json:"jito_tip_lamports"`
	ComputeUnitPriceMicroLamports uint64    `gorm:"default:1000" json:"compute_unit_price_micro_lamports"`
	ComputeUnitLimit              uint32    `gorm:"default:200000" json:"compute_unit_limit"`
	UsePrivateRpc                 bool      `gorm:"default:false" json:"use_private_rpc"`
	CreatedAt                     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt                     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SniperConfig) TableName() string {
	return "sniper_configs"
}
