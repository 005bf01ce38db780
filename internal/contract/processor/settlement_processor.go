package processor

import (
	"time"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementProcessor 资金提取事件处理器
type SettlementProcessor struct{}

// NewSettlementProcessor 创建资金提取事件处理器
func NewSettlementProcessor() *SettlementProcessor {
	return &SettlementProcessor{}
}

// Process 写入成功结算记录, 活动状态置为已结算
func (p *SettlementProcessor) Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error {
	fundsRaised, err := bigArg(eventData, "fundsRaised")
	if err != nil {
		return err
	}
	campaign, err := findCampaign(tx, event)
	if err != nil {
		return err
	}

	now := time.Now()
	settlement := model.SettlementRecordModel{
		Source:         event.Source,
		CampaignId:     campaign.CampaignId,
		TotalAmount:    toDecimal(fundsRaised),
		CreatorAmount:  toDecimal(fundsRaised),
		ArtistAddress:  campaign.Artist,
		TxHash:         event.TxHash,
		BlockNum:       event.BlockNum,
		Status:         model.SettlementStatusSuccess,
		SettlementType: model.SettlementTypeSuccess,
		SettlementTime: &now,
	}
	if err := tx.Create(&settlement).Error; err != nil {
		logger.Error("Failed to create settlement record: %v", err)
		return err
	}
	if err := tx.Model(campaign).Update("status", model.CampaignStatusSettled).Error; err != nil {
		return err
	}

	logger.Info("Campaign %d settled: %s USDC to %s", campaign.CampaignId, settlement.CreatorAmount, campaign.Artist)
	return nil
}

// GetEventType 获取支持的事件类型
func (p *SettlementProcessor) GetEventType() string {
	return contract.EventCampaignFinishedAndFundsWithdrawn
}

// RefundProcessor 失败活动退款事件处理器
type RefundProcessor struct{}

// NewRefundProcessor 创建退款事件处理器
func NewRefundProcessor() *RefundProcessor {
	return &RefundProcessor{}
}

// refundReason 失败活动退款原因
const refundReason = "campaign ended without reaching its funds goal"

// Process 按出资记录逐笔写入退款, 并写入失败结算记录
func (p *RefundProcessor) Process(tx *gorm.DB, event *model.EventModel, eventData map[string]interface{}) error {
	fundsRaised, err := bigArg(eventData, "fundsRaised")
	if err != nil {
		return err
	}
	campaign, err := findCampaign(tx, event)
	if err != nil {
		return err
	}

	var contributions []model.ContributeRecordModel
	if err := tx.Where("source = ? AND campaign_id = ?", event.Source, campaign.CampaignId).
		Order("block_num, log_index").Find(&contributions).Error; err != nil {
		return err
	}

	if len(contributions) > 0 {
		refunds := make([]model.RefundRecordModel, 0, len(contributions))
		for _, c := range contributions {
			refunds = append(refunds, model.RefundRecordModel{
				Source:       event.Source,
				CampaignId:   campaign.CampaignId,
				ContributeID: c.Id,
				Amount:       c.Amount,
				Address:      c.Address,
				TxHash:       event.TxHash,
				BlockNum:     event.BlockNum,
				Status:       model.RefundStatusSuccess,
				RefundReason: refundReason,
			})
		}
		if err := tx.Create(&refunds).Error; err != nil {
			logger.Error("Failed to create refund records: %v", err)
			return err
		}
	}

	now := time.Now()
	settlement := model.SettlementRecordModel{
		Source:         event.Source,
		CampaignId:     campaign.CampaignId,
		TotalAmount:    toDecimal(fundsRaised),
		CreatorAmount:  decimal.Zero,
		ArtistAddress:  campaign.Artist,
		TxHash:         event.TxHash,
		BlockNum:       event.BlockNum,
		Status:         model.SettlementStatusSuccess,
		SettlementType: model.SettlementTypeFailed,
		SettlementTime: &now,
	}
	if err := tx.Create(&settlement).Error; err != nil {
		logger.Error("Failed to create settlement record: %v", err)
		return err
	}
	if err := tx.Model(campaign).Update("status", model.CampaignStatusRefunded).Error; err != nil {
		return err
	}

	logger.Info("Processed refund of %s USDC to %d contributions of campaign %d",
		settlement.TotalAmount, len(contributions), campaign.CampaignId)
	return nil
}

// GetEventType 获取支持的事件类型
func (p *RefundProcessor) GetEventType() string {
	return contract.EventWithdrawIncompleteCampaign
}
