package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProcessorManager 事件处理器管理器
type ProcessorManager struct {
	mu         sync.RWMutex
	db         *gorm.DB
	processors map[string]EventProcessor
}

// EventProcessor 事件处理器接口, tx 为事件所在的数据库事务
type EventProcessor interface {
	Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error
	GetEventType() string
}

// CampaignReader 读取活动合约当前详情
type CampaignReader interface {
	CampaignDetails(ctx context.Context, address common.Address) (contract.CampaignDetails, error)
}

// NewProcessorManager 创建处理器管理器
func NewProcessorManager(db *gorm.DB, reader CampaignReader) *ProcessorManager {
	manager := &ProcessorManager{
		db:         db,
		processors: make(map[string]EventProcessor),
	}

	// 注册所有处理器
	manager.RegisterProcessor(NewCampaignCreatedProcessor(reader))
	manager.RegisterProcessor(NewCampaignStartedProcessor())
	manager.RegisterProcessor(NewContributeProcessor())
	manager.RegisterProcessor(NewTokenArtProcessor())
	manager.RegisterProcessor(NewDistributionProcessor())
	manager.RegisterProcessor(NewSettlementProcessor())
	manager.RegisterProcessor(NewRefundProcessor())

	logger.Info("ProcessorManager initialized with %d processors", len(manager.processors))
	return manager
}

// RegisterProcessor 注册事件处理器
func (pm *ProcessorManager) RegisterProcessor(processor EventProcessor) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	eventType := processor.GetEventType()
	pm.processors[eventType] = processor
	logger.Debug("Registered processor for event type: %s", eventType)
}

// GetProcessor 获取指定事件类型的处理器
func (pm *ProcessorManager) GetProcessor(eventType string) (EventProcessor, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	processor, exists := pm.processors[eventType]
	return processor, exists
}

// ProcessEvent 在一个事务内记录事件并更新投影, 已记录过的事件直接跳过.
// 返回值表示事件是否为首次处理.
func (pm *ProcessorManager) ProcessEvent(event *model.EventModel, eventData map[string]interface{}) (bool, error) {
	fresh := false
	err := pm.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(event)
		if result.Error != nil {
			return fmt.Errorf("failed to save event: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		fresh = true

		processor, exists := pm.GetProcessor(event.EventType)
		if !exists {
			logger.Warn("No processor found for event type: %s", event.EventType)
			return nil // 保留原始事件, 不更新投影
		}
		if err := processor.Process(tx, event, eventData); err != nil {
			return fmt.Errorf("process %s at %s/%d: %w", event.EventType, event.TxHash, event.LogIndex, err)
		}
		return tx.Model(event).Update("processed", true).Error
	})
	if err != nil {
		return false, err
	}
	return fresh, nil
}

// GetSupportedEventTypes 获取支持的事件类型列表
func (pm *ProcessorManager) GetSupportedEventTypes() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	eventTypes := make([]string, 0, len(pm.processors))
	for eventType := range pm.processors {
		eventTypes = append(eventTypes, eventType)
	}
	return eventTypes
}
