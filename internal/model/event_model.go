package model

import (
	"time"
)

// EventModel 链上事件记录, 同一来源内按 (tx_hash, log_index) 去重
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source          string `json:"source" gorm:"not null;uniqueIndex:idx_event_log;index:idx_event_block"`
	ContractAddress string `json:"contract_address" gorm:"not null"`
	ContractName    string `json:"contract_name" gorm:"not null"`
	EventType       string `json:"event_type" gorm:"not null;index"`
	TxHash          string `json:"tx_hash" gorm:"not null;uniqueIndex:idx_event_log"`
	BlockNum        int64  `json:"block_num" gorm:"not null;index:idx_event_block"`
	LogIndex        int64  `json:"log_index" gorm:"uniqueIndex:idx_event_log"`
	Data            string `json:"data" gorm:"type:text"`
	Processed       bool   `json:"processed" gorm:"default:false"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
