package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionRecordModel 奖励代币分发记录, 每笔出资对应一条
type DistributionRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source       string          `json:"source" gorm:"not null;uniqueIndex:idx_distribution_contribute"`
	CampaignId   int64           `json:"campaign_id" gorm:"not null;index"`
	ContributeID int64           `json:"contribute_id" gorm:"not null;uniqueIndex:idx_distribution_contribute"`
	TokenAddress string          `json:"token_address" gorm:"not null"`
	Address      string          `json:"address" gorm:"not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(78,0);not null"` // 代币最小单位
	TxHash       string          `json:"tx_hash" gorm:"not null"`
	BlockNum     int64           `json:"block_num"`
}

// TableName 自定义表名
func (DistributionRecordModel) TableName() string {
	return "distribution_record"
}
