package processor

import (
	"fmt"
	"math/big"

	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func addressArg(data map[string]interface{}, key string) (common.Address, error) {
	v, ok := data[key].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("event field %s: expected address, got %T", key, data[key])
	}
	return v, nil
}

func bigArg(data map[string]interface{}, key string) (*big.Int, error) {
	v, ok := data[key].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("event field %s: expected uint256, got %T", key, data[key])
	}
	return v, nil
}

func stringArg(data map[string]interface{}, key string) (string, error) {
	v, ok := data[key].(string)
	if !ok {
		return "", fmt.Errorf("event field %s: expected string, got %T", key, data[key])
	}
	return v, nil
}

func uint32Arg(data map[string]interface{}, key string) (uint32, error) {
	v, ok := data[key].(uint32)
	if !ok {
		return 0, fmt.Errorf("event field %s: expected uint32, got %T", key, data[key])
	}
	return v, nil
}

func toDecimal(v *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v, 0)
}

// findCampaign 按事件来源与合约地址查找活动
func findCampaign(tx *gorm.DB, event *model.EventModel) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	err := tx.Where("source = ? AND contract_address = ?", event.Source, event.ContractAddress).
		First(&campaign).Error
	if err != nil {
		return nil, fmt.Errorf("campaign %s in %s: %w", event.ContractAddress, event.Source, err)
	}
	return &campaign, nil
}

// deadlineSeconds 远程链上的持续时间可能超出 int64 秒数, 截断到 campaign.MaxDeadline
func deadlineSeconds(deadline *big.Int) int64 {
	if deadline == nil || deadline.Sign() < 0 {
		return 0
	}
	if deadline.Cmp(campaign.MaxDeadline) > 0 {
		logger.Warn("Campaign deadline %s exceeds %s seconds, clamped", deadline, campaign.MaxDeadline)
		return campaign.MaxDeadline.Int64()
	}
	return deadline.Int64()
}
