package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementRecordModel 结算记录, 每个活动至多一条
type SettlementRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source         string           `json:"source" gorm:"not null;uniqueIndex:idx_settlement_campaign"`
	CampaignId     int64            `json:"campaign_id" gorm:"not null;uniqueIndex:idx_settlement_campaign"`
	TotalAmount    decimal.Decimal  `json:"total_amount" gorm:"type:numeric(78,0);not null"`   // 募集总额
	CreatorAmount  decimal.Decimal  `json:"creator_amount" gorm:"type:numeric(78,0);not null"` // 艺术家获得金额, 失败结算时为 0
	ArtistAddress  string           `json:"artist_address"`
	TxHash         string           `json:"tx_hash" gorm:"not null"`
	BlockNum       int64            `json:"block_num"`
	Status         SettlementStatus `json:"status" gorm:"default:'pending'"`
	SettlementType SettlementType   `json:"settlement_type" gorm:"not null"`
	SettlementTime *time.Time       `json:"settlement_time"`
}

// SettlementStatus 结算状态
type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "pending" // 待处理
	SettlementStatusSuccess SettlementStatus = "success" // 成功
	SettlementStatusFailed  SettlementStatus = "failed"  // 失败
)

// SettlementType 结算类型
type SettlementType string

const (
	SettlementTypeSuccess SettlementType = "success" // 成功结算, 资金转给艺术家
	SettlementTypeFailed  SettlementType = "failed"  // 失败结算, 资金退还出资人
)

// TableName 自定义表名
func (SettlementRecordModel) TableName() string {
	return "settlement_record"
}
