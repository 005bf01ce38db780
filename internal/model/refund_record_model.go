package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundRecordModel 退款记录, 失败活动退款时每笔出资对应一条
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source       string          `json:"source" gorm:"not null;uniqueIndex:idx_refund_contribute"`
	CampaignId   int64           `json:"campaign_id" gorm:"not null;index"`
	ContributeID int64           `json:"contribute_id" gorm:"not null;uniqueIndex:idx_refund_contribute"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(78,0);not null"` // 整 USDC
	Address      string          `json:"address" gorm:"not null"`
	TxHash       string          `json:"tx_hash" gorm:"not null"`
	BlockNum     int64           `json:"block_num"`
	Status       RefundStatus    `json:"status" gorm:"default:'pending'"`
	RefundReason string          `json:"refund_reason" gorm:"type:text"`
}

// RefundStatus 退款状态
type RefundStatus string

const (
	RefundStatusPending RefundStatus = "pending" // 待处理
	RefundStatusSuccess RefundStatus = "success" // 成功
	RefundStatusFailed  RefundStatus = "failed"  // 失败
)

// TableName 自定义表名
func (RefundRecordModel) TableName() string {
	return "refund_record"
}
