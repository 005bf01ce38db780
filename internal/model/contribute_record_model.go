package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributeRecordModel 出资记录
type ContributeRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source     string          `json:"source" gorm:"not null;uniqueIndex:idx_contribute_log"`
	CampaignId int64           `json:"campaign_id" gorm:"not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(78,0);not null"` // 整 USDC
	Address    string          `json:"address" gorm:"not null;index"`
	TxHash     string          `json:"tx_hash" gorm:"not null;uniqueIndex:idx_contribute_log"`
	LogIndex   int64           `json:"log_index" gorm:"uniqueIndex:idx_contribute_log"`
	BlockNum   int64           `json:"block_num"`
}

// TableName 自定义表名
func (ContributeRecordModel) TableName() string {
	return "contribute_record"
}
