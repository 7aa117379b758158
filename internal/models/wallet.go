package models

import (
	"time"
)

type Wallet struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	UserID              uint       `gorm:"not null;index" json:"user_id"`
	PublicKey           string     `gorm:"type:varchar(44);uniqueIndex;not null" json:"public_key"`
	EncryptedPrivateKey string     `gorm:"type:text;not null" json:"-"`
	WalletName          string     `gorm:"type:varchar(100);default:'Main Wallet'" json:"wallet_name"`
	IsPrimary           bool       `gorm:"default:true" json:"is_primary"`
	BalanceSol          float64    `gorm:"default:0" json:"balance_sol"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	LastUsedAt          *time.Time `json:"last_used_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
