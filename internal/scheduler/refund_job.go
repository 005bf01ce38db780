package scheduler

import (
	"errors"
	"time"

	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/logic"
	"github.com/blues/artdrop/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
)

// Refunder 可以代表 owner 发起退款的节点, 由 artdrop.Node 实现
type Refunder interface {
	Source() string
	Owner() common.Address
	WithdrawIncompleteCampaign(from common.Address, id uint32) (*ledger.Receipt, error)
}

const refundPageSize = 100

// CampaignRefundJob 自动退款任务: 以 owner 身份对已判定失败的本地活动执行退款
type CampaignRefundJob struct {
	node      Refunder
	campaigns *logic.CampaignLogic
	interval  time.Duration
	pageSize  int
}

// NewCampaignRefundJob 创建自动退款任务
func NewCampaignRefundJob(node Refunder, campaigns *logic.CampaignLogic, interval time.Duration) *CampaignRefundJob {
	return &CampaignRefundJob{node: node, campaigns: campaigns, interval: interval, pageSize: refundPageSize}
}

// GetName 获取任务名称
func (j *CampaignRefundJob) GetName() string {
	return "campaign_refund"
}

// GetSchedule 获取调度配置
func (j *CampaignRefundJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 逐页处理全部失败活动, 某个活动退款失败不影响后续页
func (j *CampaignRefundJob) Execute() {
	status := string(model.CampaignStatusFailed)
	refundedCount := 0
	for page, seen := 1, 0; ; page++ {
		campaigns, total, err := j.campaigns.GetCampaigns(j.node.Source(), status, page, j.pageSize)
		if err != nil {
			logger.Error("Failed to fetch failed campaigns (page %d): %v", page, err)
			break
		}
		for _, c := range campaigns {
			if j.refund(c) {
				refundedCount++
			}
		}
		seen += len(campaigns)
		if len(campaigns) == 0 || int64(seen) >= total {
			break
		}
	}

	if refundedCount > 0 {
		logger.Info("Campaign refund task completed. Refunded %d campaigns", refundedCount)
	}
}

func (j *CampaignRefundJob) refund(c model.CampaignModel) bool {
	receipt, err := j.node.WithdrawIncompleteCampaign(j.node.Owner(), uint32(c.CampaignId))
	if err != nil {
		// 投影尚未同步到退款事件
		if !errors.Is(err, campaign.ErrAlreadyRefunded) {
			logger.Error("Failed to refund campaign %d: %v", c.CampaignId, err)
		}
		return false
	}
	logger.Info("Refunded campaign %d in tx %s", c.CampaignId, receipt.TxHash.Hex())
	return true
}
