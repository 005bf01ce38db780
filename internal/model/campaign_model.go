package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignModel 众筹活动投影
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 来源与链上标识
	Source          string `json:"source" gorm:"not null;uniqueIndex:idx_campaign_source_id;uniqueIndex:idx_campaign_source_address"`
	CampaignId      int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_source_id"`
	ContractAddress string `json:"contract_address" gorm:"not null;uniqueIndex:idx_campaign_source_address"`

	// 基本信息
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Artist      string `json:"artist"`

	// 众筹信息, 金额以整 USDC 计
	FundsGoal     decimal.Decimal `json:"funds_goal" gorm:"type:numeric(78,0);not null"`
	FundsRaised   decimal.Decimal `json:"funds_raised" gorm:"type:numeric(78,0);default:0"`
	InitialSupply decimal.Decimal `json:"initial_supply" gorm:"type:numeric(78,0);not null"`
	Deadline      int64           `json:"deadline"` // 持续秒数

	// 时间信息, 未开始时为空
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	Status            CampaignStatus `json:"status" gorm:"default:'pending';index"`
	ContributionCount int64          `json:"contribution_count" gorm:"default:0"`

	// 区块链信息
	TxHash   string `json:"tx_hash"`
	BlockNum int64  `json:"block_num"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusPending  CampaignStatus = "pending"  // 待开始
	CampaignStatusActive   CampaignStatus = "active"   // 进行中
	CampaignStatusSuccess  CampaignStatus = "success"  // 达成目标
	CampaignStatusFailed   CampaignStatus = "failed"   // 未达成目标
	CampaignStatusSettled  CampaignStatus = "settled"  // 资金已转给艺术家
	CampaignStatusRefunded CampaignStatus = "refunded" // 出资已退还
)

// Final 是否为终态
func (s CampaignStatus) Final() bool {
	return s == CampaignStatusSettled || s == CampaignStatusRefunded
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
