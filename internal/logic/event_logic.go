package logic

import (
	"fmt"

	"github.com/blues/artdrop/internal/model"
	"gorm.io/gorm"
)

// EventLogic 事件查询逻辑
type EventLogic struct {
	db *gorm.DB
}

// NewEventLogic 创建事件查询逻辑
func NewEventLogic(db *gorm.DB) *EventLogic {
	return &EventLogic{db: db}
}

// GetEvents 获取事件列表, eventType 为空时不过滤
func (e *EventLogic) GetEvents(source, eventType string, page, pageSize int) ([]model.EventModel, int64, error) {
	query := e.db.Model(&model.EventModel{}).Where("source = ?", source)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	return paginate[model.EventModel](query, page, pageSize, "block_num DESC, log_index DESC")
}

// GetEventsByTxHash 获取一笔交易产生的全部事件
func (e *EventLogic) GetEventsByTxHash(source, txHash string) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("source = ? AND tx_hash = ?", source, txHash).
		Order("log_index ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取交易事件失败: %w", err)
	}
	return events, nil
}

// GetEventStatistics 按事件类型统计
func (e *EventLogic) GetEventStatistics(source string) (map[string]int64, error) {
	var rows []struct {
		EventType string
		Count     int64
	}
	if err := e.db.Model(&model.EventModel{}).
		Where("source = ?", source).
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("获取事件统计失败: %w", err)
	}

	stats := make(map[string]int64, len(rows))
	for _, row := range rows {
		stats[row.EventType] = row.Count
	}
	return stats, nil
}

// GetLastProcessedBlock 获取来源内已处理的最大区块号
func (e *EventLogic) GetLastProcessedBlock(source string) (int64, error) {
	var block int64
	if err := e.db.Model(&model.EventModel{}).
		Where("source = ?", source).
		Select("COALESCE(MAX(block_num), 0)").
		Scan(&block).Error; err != nil {
		return 0, fmt.Errorf("获取最大区块号失败: %w", err)
	}
	return block, nil
}

// GetUnprocessedEvents 获取没有处理器的原始事件
func (e *EventLogic) GetUnprocessedEvents(source string, limit int) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("source = ? AND processed = ?", source, false).
		Order("block_num ASC, log_index ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("获取未处理事件失败: %w", err)
	}
	return events, nil
}
