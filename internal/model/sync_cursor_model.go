package model

import (
	"time"
)

// SyncCursorModel 每个来源的同步游标, 仅在整批区块处理成功后前移
type SyncCursorModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source    string `json:"source" gorm:"not null;uniqueIndex"`
	NextBlock int64  `json:"next_block" gorm:"not null"` // 下一个待处理的区块号
}

// TableName 自定义表名
func (SyncCursorModel) TableName() string {
	return "sync_cursor"
}
