package logic

import (
	"fmt"

	"github.com/blues/artdrop/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContributeRecordLogic 出资记录查询逻辑
type ContributeRecordLogic struct {
	db *gorm.DB
}

// NewContributeRecordLogic 创建出资记录查询逻辑
func NewContributeRecordLogic(db *gorm.DB) *ContributeRecordLogic {
	return &ContributeRecordLogic{db: db}
}

// GetCampaignContributeRecords 获取活动出资记录
func (c *ContributeRecordLogic) GetCampaignContributeRecords(source string, campaignId int64, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	query := c.db.Model(&model.ContributeRecordModel{}).
		Where("source = ? AND campaign_id = ?", source, campaignId)
	return paginate[model.ContributeRecordModel](query, page, pageSize, "block_num ASC, log_index ASC")
}

// GetContributorRecords 获取某地址在来源内的全部出资
func (c *ContributeRecordLogic) GetContributorRecords(source, address string, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	query := c.db.Model(&model.ContributeRecordModel{}).
		Where("source = ? AND address = ?", source, address)
	return paginate[model.ContributeRecordModel](query, page, pageSize, "block_num DESC, log_index DESC")
}

// GetContributeStats 获取出资统计信息
func (c *ContributeRecordLogic) GetContributeStats(source string, campaignId int64) (map[string]interface{}, error) {
	var stats struct {
		TotalContributions int64
		TotalAmount        decimal.Decimal
		UniqueContributors int64
	}

	if err := c.db.Model(&model.ContributeRecordModel{}).
		Where("source = ? AND campaign_id = ?", source, campaignId).
		Select("COUNT(*) AS total_contributions, COALESCE(SUM(amount), 0) AS total_amount, COUNT(DISTINCT address) AS unique_contributors").
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("获取出资统计失败: %w", err)
	}

	// 平均出资金额
	average := decimal.Zero
	if stats.TotalContributions > 0 {
		average = stats.TotalAmount.Div(decimal.NewFromInt(stats.TotalContributions)).Round(6)
	}

	return map[string]interface{}{
		"total_contributions": stats.TotalContributions,
		"total_amount":        stats.TotalAmount.String(),
		"unique_contributors": stats.UniqueContributors,
		"average_amount":      average.String(),
	}, nil
}
