package models

import (
	"time"
)

// TokenLaunch records a newly observed token, fed to the sniper engine
// through the launch queue.
type TokenLaunch struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	TokenAddress        string     `gorm:"type:varchar(44);uniqueIndex;not null" json:"token_address"`
	TokenSymbol         string     `gorm:"type:varchar(20)" json:"token_symbol"`
	TokenName           string     `gorm:"type:varchar(100)" json:"token_name"`
	CreatorAddress      string     `gorm:"type:varchar(44)" json:"creator_address"`
	InitialLiquiditySol float64    `json:"initial_liquidity_sol"`
	Source              string     `gorm:"type:varchar(20)" json:"source"`
	LaunchTimestamp     time.Time  `gorm:"not null" json:"launch_timestamp"`
	GraduatedToRaydium  bool       `gorm:"default:false" json:"graduated_to_raydium"`
	GraduationTimestamp *time.Time `json:"graduation_timestamp"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (TokenLaunch) TableName() string {
	return "token_launches"
}
