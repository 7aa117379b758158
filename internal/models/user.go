package models

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	IsPremium      bool      `gorm:"default:false" json:"is_premium"`
	TotalTrades    int       `gorm:"not null;default:0" json:"total_trades"`
	TotalVolumeSol float64   `gorm:"not null;default:0" json:"total_volume_sol"`
	TotalProfitSol float64   `gorm:"not null;default:0" json:"total_profit_sol"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	LastLogin      *time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}
