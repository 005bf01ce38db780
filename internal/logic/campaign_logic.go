package logic

import (
	"fmt"
	"time"

	"github.com/blues/artdrop/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignLogic 活动查询逻辑
type CampaignLogic struct {
	db *gorm.DB
}

// NewCampaignLogic 创建活动查询逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{db: db}
}

// GetCampaigns 获取活动列表, status 为空时不过滤
func (c *CampaignLogic) GetCampaigns(source, status string, page, pageSize int) ([]model.CampaignModel, int64, error) {
	query := c.db.Model(&model.CampaignModel{}).Where("source = ?", source)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return paginate[model.CampaignModel](query, page, pageSize, "campaign_id ASC")
}

// GetCampaign 获取活动详情
func (c *CampaignLogic) GetCampaign(source string, campaignId int64) (*model.CampaignModel, error) {
	return first[model.CampaignModel](c.db.Where("source = ? AND campaign_id = ?", source, campaignId))
}

// GetCampaignStats 获取活动统计信息
func (c *CampaignLogic) GetCampaignStats(source string, campaignId int64) (map[string]interface{}, error) {
	campaign, err := c.GetCampaign(source, campaignId)
	if err != nil {
		return nil, err
	}

	var contributorCount int64
	if err := c.db.Model(&model.ContributeRecordModel{}).
		Where("source = ? AND campaign_id = ?", source, campaignId).
		Select("COUNT(DISTINCT address)").
		Scan(&contributorCount).Error; err != nil {
		return nil, fmt.Errorf("获取出资人数失败: %w", err)
	}

	var refunded sum
	if err := c.db.Model(&model.RefundRecordModel{}).
		Where("source = ? AND campaign_id = ?", source, campaignId).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&refunded).Error; err != nil {
		return nil, fmt.Errorf("获取退款金额失败: %w", err)
	}

	var distributed sum
	if err := c.db.Model(&model.DistributionRecordModel{}).
		Where("source = ? AND campaign_id = ?", source, campaignId).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&distributed).Error; err != nil {
		return nil, fmt.Errorf("获取分发数量失败: %w", err)
	}

	// 计算完成百分比
	completion := decimal.Zero
	if campaign.FundsGoal.IsPositive() {
		completion = campaign.FundsRaised.Mul(decimal.NewFromInt(100)).Div(campaign.FundsGoal).Round(2)
	}

	// 计算剩余时间
	remaining := time.Duration(campaign.Deadline) * time.Second
	if campaign.EndTime != nil {
		remaining = max(time.Until(*campaign.EndTime), 0).Truncate(time.Second)
	}

	return map[string]interface{}{
		"campaign_id":           campaign.CampaignId,
		"status":                campaign.Status,
		"funds_raised":          campaign.FundsRaised.String(),
		"funds_goal":            campaign.FundsGoal.String(),
		"completion_percentage": completion.String(),
		"contributor_count":     contributorCount,
		"contribution_count":    campaign.ContributionCount,
		"refunded_amount":       refunded.Total.String(),
		"distributed_tokens":    distributed.Total.String(),
		"remaining_time":        remaining.String(),
	}, nil
}

// GetAllCampaignStats 获取来源内全部活动的统计信息
func (c *CampaignLogic) GetAllCampaignStats(source string) (map[string]interface{}, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := c.db.Model(&model.CampaignModel{}).
		Where("source = ?", source).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("获取活动状态统计失败: %w", err)
	}

	byStatus := make(map[string]int64, len(rows))
	var totalCampaigns int64
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		totalCampaigns += row.Count
	}

	// 统计总募集金额
	var totalRaised sum
	if err := c.db.Model(&model.CampaignModel{}).
		Where("source = ?", source).
		Select("COALESCE(SUM(funds_raised), 0) AS total").
		Scan(&totalRaised).Error; err != nil {
		return nil, fmt.Errorf("获取募集总额失败: %w", err)
	}

	// 统计总出资人数（去重）
	var totalContributors int64
	if err := c.db.Model(&model.ContributeRecordModel{}).
		Where("source = ?", source).
		Distinct("address").
		Count(&totalContributors).Error; err != nil {
		return nil, fmt.Errorf("获取出资人数失败: %w", err)
	}

	return map[string]interface{}{
		"source":            source,
		"totalCampaigns":    totalCampaigns,
		"campaignsByStatus": byStatus,
		"totalRaised":       totalRaised.Total.String(),
		"totalContributors": totalContributors,
	}, nil
}

// GetCampaignsToRefresh 获取可能需要按区块时间更新状态的活动
func (c *CampaignLogic) GetCampaignsToRefresh(source string) ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	if err := c.db.Where("source = ? AND status = ?", source, model.CampaignStatusActive).
		Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("获取进行中活动失败: %w", err)
	}
	return campaigns, nil
}

// UpdateStatus 更新活动状态, 仅当状态仍为 from 时生效
func (c *CampaignLogic) UpdateStatus(id int64, from, to model.CampaignStatus) (bool, error) {
	result := c.db.Model(&model.CampaignModel{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("更新活动状态失败: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
