package logic

import (
	"github.com/blues/artdrop/internal/model"
	"gorm.io/gorm"
)

// RefundRecordLogic 退款与结算查询逻辑
type RefundRecordLogic struct {
	db *gorm.DB
}

// NewRefundRecordLogic 创建退款与结算查询逻辑
func NewRefundRecordLogic(db *gorm.DB) *RefundRecordLogic {
	return &RefundRecordLogic{db: db}
}

// GetCampaignRefunds 获取活动退款记录
func (r *RefundRecordLogic) GetCampaignRefunds(source string, campaignId int64, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	query := r.db.Model(&model.RefundRecordModel{}).
		Where("source = ? AND campaign_id = ?", source, campaignId)
	return paginate[model.RefundRecordModel](query, page, pageSize, "contribute_id ASC")
}

// GetSettlement 获取活动结算记录
func (r *RefundRecordLogic) GetSettlement(source string, campaignId int64) (*model.SettlementRecordModel, error) {
	return first[model.SettlementRecordModel](r.db.Where("source = ? AND campaign_id = ?", source, campaignId))
}

// GetTokenArt 获取活动奖励代币
func (r *RefundRecordLogic) GetTokenArt(source string, campaignId int64) (*model.TokenArtModel, error) {
	return first[model.TokenArtModel](r.db.Where("source = ? AND campaign_id = ?", source, campaignId))
}

// GetDistributions 获取奖励代币分发记录
func (r *RefundRecordLogic) GetDistributions(source string, campaignId int64, page, pageSize int) ([]model.DistributionRecordModel, int64, error) {
	query := r.db.Model(&model.DistributionRecordModel{}).
		Where("source = ? AND campaign_id = ?", source, campaignId)
	return paginate[model.DistributionRecordModel](query, page, pageSize, "contribute_id ASC")
}
