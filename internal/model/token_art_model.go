package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenArtModel 活动奖励代币
type TokenArtModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source        string          `json:"source" gorm:"not null;uniqueIndex:idx_token_art_campaign"`
	CampaignId    int64           `json:"campaign_id" gorm:"not null;uniqueIndex:idx_token_art_campaign"`
	Address       string          `json:"address" gorm:"not null"`
	Name          string          `json:"name" gorm:"not null"`
	Symbol        string          `json:"symbol" gorm:"not null"`
	InitialSupply decimal.Decimal `json:"initial_supply" gorm:"type:numeric(78,0)"` // 整币数量
	Distributed   bool            `json:"distributed" gorm:"default:false"`
	DistributedAt *time.Time      `json:"distributed_at"`
	TxHash        string          `json:"tx_hash" gorm:"not null"`
	BlockNum      int64           `json:"block_num"`
}

// TableName 自定义表名
func (TokenArtModel) TableName() string {
	return "token_art"
}
