package processor

import (
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/model"
	"gorm.io/gorm"
)

// ContributeProcessor 出资事件处理器
type ContributeProcessor struct{}

// NewContributeProcessor 创建出资事件处理器
func NewContributeProcessor() *ContributeProcessor {
	return &ContributeProcessor{}
}

// Process 写入出资记录并累加募集金额
func (p *ContributeProcessor) Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error {
	contributor, err := addressArg(eventData, "contributor")
	if err != nil {
		return err
	}
	amount, err := bigArg(eventData, "amount")
	if err != nil {
		return err
	}
	campaign, err := findCampaign(tx, event)
	if err != nil {
		return err
	}

	record := model.ContributeRecordModel{
		Source:     event.Source,
		CampaignId: campaign.CampaignId,
		Amount:     toDecimal(amount),
		Address:    contributor.Hex(),
		TxHash:     event.TxHash,
		LogIndex:   event.LogIndex,
		BlockNum:   event.BlockNum,
	}
	if err := tx.Create(&record).Error; err != nil {
		logger.Error("Failed to create contribution record: %v", err)
		return err
	}

	if err := tx.Model(campaign).Updates(map[string]interface{}{
		"funds_raised":       gorm.Expr("funds_raised + ?", record.Amount),
		"contribution_count": gorm.Expr("contribution_count + 1"),
	}).Error; err != nil {
		logger.Error("Failed to update funds raised: %v", err)
		return err
	}

	logger.Info("Processed contribution: %s USDC from %s to campaign %d",
		record.Amount, contributor.Hex(), campaign.CampaignId)
	return nil
}

// GetEventType 获取支持的事件类型
func (p *ContributeProcessor) GetEventType() string {
	return contract.EventContributionDone
}
