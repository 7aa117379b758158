package models

import (
	"time"
)

// Trade status values. A trade starts PENDING and moves exactly once to
// SUCCESS or FAILED; CANCELLED is only reachable before submission.
const (
	TradeStatusPending   = "PENDING"
	TradeStatusSuccess   = "SUCCESS"
	TradeStatusFailed    = "FAILED"
	TradeStatusCancelled = "CANCELLED"
)

const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

type Trade struct {
	ID                   uint       `gorm:"primarykey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	WalletID             uint       `gorm:"not null" json:"wallet_id"`
	TokenAddress         string     `gorm:"type:varchar(44);not null;index" json:"token_address"`
	TradeType            string     `gorm:"type:varchar(10);not null" json:"trade_type"`
	AmountSol            float64    `gorm:"not null" json:"amount_sol"`
	AmountTokens         *float64   `json:"amount_tokens"`
	PricePerTokenSol     *float64   `json:"price_per_token_sol"`
	TransactionSignature *string    `gorm:"type:varchar(88);uniqueIndex" json:"transaction_signature"`
	TransactionFeeSol    float64    `gorm:"default:0" json:"transaction_fee_sol"`
	PlatformFeeSol       float64    `gorm:"default:0" json:"platform_fee_sol"`
	SlippageBps          int        `gorm:"default:500" json:"slippage_bps"`
	Status               string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	ErrorMessage         *string    `gorm:"type:text" json:"error_message"`
	CreatedAt            time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ConfirmedAt          *time.Time `json:"confirmed_at"`
}

func (Trade) TableName() string {
	return "trades"
}
