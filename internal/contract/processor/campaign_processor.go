package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const readTimeout = 10 * time.Second

// CampaignCreatedProcessor 活动创建事件处理器
type CampaignCreatedProcessor struct {
	reader CampaignReader
}

// NewCampaignCreatedProcessor 创建活动创建事件处理器, reader 用于补全事件中没有的活动参数
func NewCampaignCreatedProcessor(reader CampaignReader) *CampaignCreatedProcessor {
	return &CampaignCreatedProcessor{reader: reader}
}

// Process 写入活动记录
func (p *CampaignCreatedProcessor) Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error {
	campaignId, err := uint32Arg(eventData, "campaignId")
	if err != nil {
		return err
	}
	name, err := stringArg(eventData, "name")
	if err != nil {
		return err
	}
	address, err := addressArg(eventData, "campaignAddress")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()
	details, err := p.reader.CampaignDetails(ctx, address)
	if err != nil {
		return fmt.Errorf("read campaign %s: %w", address.Hex(), err)
	}

	campaign := model.CampaignModel{
		Source:          event.Source,
		CampaignId:      int64(campaignId),
		ContractAddress: address.Hex(),
		Name:            name,
		Description:     details.Description,
		Artist:          details.Artist.Hex(),
		FundsGoal:       toDecimal(details.FundsGoal),
		FundsRaised:     decimal.Zero,
		InitialSupply:   toDecimal(details.InitialSupply),
		Deadline:        deadlineSeconds(details.Deadline),
		Status:          model.CampaignStatusPending,
		TxHash:          event.TxHash,
		BlockNum:        event.BlockNum,
	}
	if err := tx.Create(&campaign).Error; err != nil {
		logger.Error("Failed to create campaign record: %v", err)
		return err
	}

	logger.Info("Indexed campaign %d (%s) at %s from %s", campaignId, name, address.Hex(), event.Source)
	return nil
}

// GetEventType 获取支持的事件类型
func (p *CampaignCreatedProcessor) GetEventType() string {
	return contract.EventCampaignCreated
}

// CampaignStartedProcessor 活动开始事件处理器
type CampaignStartedProcessor struct{}

// NewCampaignStartedProcessor 创建活动开始事件处理器
func NewCampaignStartedProcessor() *CampaignStartedProcessor {
	return &CampaignStartedProcessor{}
}

// Process 记录开始与截止时间, 状态置为进行中
func (p *CampaignStartedProcessor) Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error {
	startTime, err := bigArg(eventData, "startTime")
	if err != nil {
		return err
	}
	campaign, err := findCampaign(tx, event)
	if err != nil {
		return err
	}

	start := time.Unix(startTime.Int64(), 0).UTC()
	end := start.Add(time.Duration(campaign.Deadline) * time.Second)
	if err := tx.Model(campaign).Updates(map[string]interface{}{
		"start_time": start,
		"end_time":   end,
		"status":     model.CampaignStatusActive,
	}).Error; err != nil {
		logger.Error("Failed to update campaign start: %v", err)
		return err
	}

	logger.Info("Campaign %d started at %s, ends at %s", campaign.CampaignId, start.Format(time.RFC3339), end.Format(time.RFC3339))
	return nil
}

// GetEventType 获取支持的事件类型
func (p *CampaignStartedProcessor) GetEventType() string {
	return contract.EventCampaignStarted
}
