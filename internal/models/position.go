package models

import (
	"time"
)

const (
	PositionStatusOpen       = "OPEN"
	PositionStatusClosed     = "CLOSED"
	PositionStatusLiquidated = "LIQUIDATED"
)

const (
	CloseReasonManual      = "MANUAL"
	CloseReasonTakeProfit  = "TAKE_PROFIT"
	CloseReasonStopLoss    = "STOP_LOSS"
	CloseReasonLiquidation = "LIQUIDATION"
)

// Position tracks a holding acquired through one entry trade. While the
// position is OPEN all exit-side fields are null; a successful close sets
// them together in a single transition.
type Position struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	WalletID          uint       `gorm:"not null" json:"wallet_id"`
	TokenAddress      string     `gorm:"type:varchar(44);not null;index" json:"token_address"`
	EntryPrice        float64    `gorm:"not null" json:"entry_price"`
	ExitPrice         *float64   `json:"exit_price"`
	Amount            float64    `gorm:"not null" json:"amount"`
	AmountSol         float64    `gorm:"not null" json:"amount_sol"`
	TakeProfitPercent *float64   `json:"take_profit_percent"`
	StopLossPercent   *float64   `json:"stop_loss_percent"`
	Status            string     `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	CloseReason       *string    `gorm:"type:varchar(30)" json:"close_reason"`
	PnlPercent        *float64   `json:"pnl_percent"`
	PnlSol            *float64   `json:"pnl_sol"`
	EntryTradeID      uint       `gorm:"not null" json:"entry_trade_id"`
	ExitTradeID       *uint      `json:"exit_trade_id"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	EntryDate         time.Time  `json:"entry_date" gorm:"autoCreateTime"`
	ExitDate          *time.Time `json:"exit_date"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}
