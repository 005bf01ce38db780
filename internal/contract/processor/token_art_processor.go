package processor

import (
	"time"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/model"
	"github.com/blues/artdrop/internal/token"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TokenArtProcessor 奖励代币创建事件处理器
type TokenArtProcessor struct{}

// NewTokenArtProcessor 创建奖励代币创建事件处理器
func NewTokenArtProcessor() *TokenArtProcessor {
	return &TokenArtProcessor{}
}

// Process 写入代币记录, 只有达成目标的活动能创建代币, 状态置为成功
func (p *TokenArtProcessor) Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error {
	address, err := addressArg(eventData, "tokenArtAddress")
	if err != nil {
		return err
	}
	name, err := stringArg(eventData, "name")
	if err != nil {
		return err
	}
	symbol, err := stringArg(eventData, "symbol")
	if err != nil {
		return err
	}
	campaign, err := findCampaign(tx, event)
	if err != nil {
		return err
	}

	art := model.TokenArtModel{
		Source:        event.Source,
		CampaignId:    campaign.CampaignId,
		Address:       address.Hex(),
		Name:          name,
		Symbol:        symbol,
		InitialSupply: campaign.InitialSupply,
		TxHash:        event.TxHash,
		BlockNum:      event.BlockNum,
	}
	if err := tx.Create(&art).Error; err != nil {
		logger.Error("Failed to create token art record: %v", err)
		return err
	}
	if err := tx.Model(campaign).Update("status", model.CampaignStatusSuccess).Error; err != nil {
		return err
	}

	logger.Info("Token art %s (%s) created for campaign %d at %s", name, symbol, campaign.CampaignId, address.Hex())
	return nil
}

// GetEventType 获取支持的事件类型
func (p *TokenArtProcessor) GetEventType() string {
	return contract.EventTokenArtCreated
}

// DistributionProcessor 奖励代币分发事件处理器
type DistributionProcessor struct{}

// NewDistributionProcessor 创建奖励代币分发事件处理器
func NewDistributionProcessor() *DistributionProcessor {
	return &DistributionProcessor{}
}

// Process 标记代币已分发, 并按出资记录计算每笔分得的代币
func (p *DistributionProcessor) Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error {
	address, err := addressArg(eventData, "tokenArtAddress")
	if err != nil {
		return err
	}
	campaign, err := findCampaign(tx, event)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := tx.Model(&model.TokenArtModel{}).
		Where("source = ? AND campaign_id = ?", event.Source, campaign.CampaignId).
		Updates(map[string]interface{}{"distributed": true, "distributed_at": now}).Error; err != nil {
		return err
	}

	var contributions []model.ContributeRecordModel
	if err := tx.Where("source = ? AND campaign_id = ?", event.Source, campaign.CampaignId).
		Order("block_num, log_index").Find(&contributions).Error; err != nil {
		return err
	}
	if len(contributions) == 0 {
		return nil
	}

	supply, goal := campaign.InitialSupply.BigInt(), campaign.FundsGoal.BigInt()
	records := make([]model.DistributionRecordModel, 0, len(contributions))
	for _, c := range contributions {
		records = append(records, model.DistributionRecordModel{
			Source:       event.Source,
			CampaignId:   campaign.CampaignId,
			ContributeID: c.Id,
			TokenAddress: address.Hex(),
			Address:      c.Address,
			Amount:       decimal.NewFromBigInt(token.Share(c.Amount.BigInt(), supply, goal), 0),
			TxHash:       event.TxHash,
			BlockNum:     event.BlockNum,
		})
	}
	if err := tx.Create(&records).Error; err != nil {
		logger.Error("Failed to create distribution records: %v", err)
		return err
	}

	logger.Info("Distributed token art %s to %d contributions of campaign %d", address.Hex(), len(records), campaign.CampaignId)
	return nil
}

// GetEventType 获取支持的事件类型
func (p *DistributionProcessor) GetEventType() string {
	return contract.EventTokensDistributed
}
