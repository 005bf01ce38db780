package scheduler

import (
	"context"
	"time"

	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/logic"
	"github.com/blues/artdrop/internal/metrics"
	"github.com/blues/artdrop/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
)

// StatusReader 按区块时间读取活动状态
type StatusReader interface {
	CampaignStatus(ctx context.Context, address common.Address) (campaign.Status, error)
}

// CampaignStatusJob 活动状态更新任务: 截止后按是否达成目标将进行中的活动置为成功或失败
type CampaignStatusJob struct {
	campaigns *logic.CampaignLogic
	readers   map[string]StatusReader // 来源 -> 状态读取器
	interval  time.Duration
	metrics   *metrics.Metrics
}

// NewCampaignStatusJob 创建活动状态更新任务
func NewCampaignStatusJob(campaigns *logic.CampaignLogic, readers map[string]StatusReader, interval time.Duration, m *metrics.Metrics) *CampaignStatusJob {
	return &CampaignStatusJob{
		campaigns: campaigns,
		readers:   readers,
		interval:  interval,
		metrics:   m,
	}
}

// GetName 获取任务名称
func (j *CampaignStatusJob) GetName() string {
	return "campaign_status_updater"
}

// GetSchedule 获取调度配置
func (j *CampaignStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *CampaignStatusJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	updatedCount := 0
	for source, reader := range j.readers {
		updatedCount += j.refresh(ctx, source, reader)
	}
	if updatedCount > 0 {
		logger.Info("Campaign status update completed. Updated %d campaigns", updatedCount)
	}
}

func (j *CampaignStatusJob) refresh(ctx context.Context, source string, reader StatusReader) int {
	campaigns, err := j.campaigns.GetCampaignsToRefresh(source)
	if err != nil {
		logger.Error("Failed to fetch campaigns of %s: %v", source, err)
		return 0
	}

	updatedCount := 0
	for _, c := range campaigns {
		status, err := reader.CampaignStatus(ctx, common.HexToAddress(c.ContractAddress))
		if err != nil {
			logger.Error("Failed to read status of campaign %d: %v", c.CampaignId, err)
			continue
		}

		var newStatus model.CampaignStatus
		switch status {
		case campaign.StatusSucceeded:
			newStatus = model.CampaignStatusSuccess
		case campaign.StatusFailed:
			newStatus = model.CampaignStatusFailed
		default:
			continue
		}

		updated, err := j.campaigns.UpdateStatus(c.Id, model.CampaignStatusActive, newStatus)
		if err != nil {
			logger.Error("Failed to update campaign %d status: %v", c.CampaignId, err)
			continue
		}
		if updated {
			logger.Info("Updated campaign %d status from %s to %s", c.CampaignId, c.Status, newStatus)
			if j.metrics != nil {
				j.metrics.StatusUpdates.WithLabelValues(string(newStatus)).Inc()
			}
			updatedCount++
		}
	}
	return updatedCount
}
