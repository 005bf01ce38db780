package handler

import (
	"fmt"
	"math/big"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 交易请求模型, 大整数一律使用十进制字符串

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Artist        string `json:"artist" binding:"required"`
	FundsGoal     string `json:"fundsGoal" binding:"required"`     // 整 USDC
	Deadline      string `json:"deadline" binding:"required"`      // 开始后持续秒数
	InitialSupply string `json:"initialSupply" binding:"required"` // 整币数量
}

// ContributeRequest 出资请求
type ContributeRequest struct {
	Amount string `json:"amount" binding:"required"` // 整 USDC
}

// CreateTokenArtRequest 创建奖励代币请求
type CreateTokenArtRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// MintRequest USDC 增发请求
type MintRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"` // USDC, 最多 6 位小数
}

// ApproveRequest USDC 授权请求
type ApproveRequest struct {
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"` // USDC, 最多 6 位小数
}

// TransferRequest 代币转账请求
type TransferRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"` // 按代币精度的十进制数
}

// IncreaseTimeRequest 时间推进请求
type IncreaseTimeRequest struct {
	Seconds uint64 `json:"seconds" binding:"required"`
}

// 账本响应模型

// ReceiptResponse 交易回执
type ReceiptResponse struct {
	TxHash      string                   `json:"txHash"`
	From        string                   `json:"from"`
	Method      string                   `json:"method"`
	BlockNumber uint64                   `json:"blockNumber"`
	BlockHash   string                   `json:"blockHash"`
	Timestamp   uint64                   `json:"timestamp"`
	Events      []map[string]interface{} `json:"events"`
}

// CampaignResponse 活动链上视图
type CampaignResponse struct {
	ID                uint32            `json:"id"`
	Address           string            `json:"address"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Artist            string            `json:"artist"`
	InitialSupply     string            `json:"initialSupply"`
	Deadline          string            `json:"deadline"`
	FundsGoal         string            `json:"fundsGoal"`
	FundsRaised       string            `json:"fundsRaised"`
	StartTime         string            `json:"startTime"`
	IsCompleted       bool              `json:"isCompleted"`
	RemainingTime     string            `json:"remainingTime"`
	Status            string            `json:"status"`
	ContributionCount int               `json:"contributionCount"`
	Distributed       bool              `json:"distributed"`
	Withdrawn         bool              `json:"withdrawn"`
	Refunded          bool              `json:"refunded"`
	TokenArt          *TokenArtResponse `json:"tokenArt"`
}

// TokenArtResponse 奖励代币信息
type TokenArtResponse struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Address       string `json:"address"`
	InitialSupply string `json:"initialSupply"`
	Rate          string `json:"rate"`
}

// ContributionResponse 链上出资记录
type ContributionResponse struct {
	Contributor string `json:"contributor"`
	Amount      string `json:"amount"`
}

// BalanceResponse 代币余额
type BalanceResponse struct {
	Token     string `json:"token"`
	Holder    string `json:"holder"`
	Raw       string `json:"raw"`       // 最小单位
	Formatted string `json:"formatted"` // 按精度格式化
}

func newReceiptResponse(r *ledger.Receipt) ReceiptResponse {
	resp := ReceiptResponse{
		TxHash:      r.TxHash.Hex(),
		From:        r.From.Hex(),
		Method:      r.Method,
		BlockNumber: r.BlockNumber,
		BlockHash:   r.BlockHash.Hex(),
		Timestamp:   r.Timestamp,
		Events:      make([]map[string]interface{}, 0, len(r.Logs)),
	}
	for _, l := range r.Logs {
		event, err := contract.DecodeLog(*l)
		if err != nil {
			logger.Warn("Failed to decode log %d of %s: %v", l.Index, r.TxHash.Hex(), err)
			continue
		}
		resp.Events = append(resp.Events, event)
	}
	return resp
}

func newCampaignResponse(v artdrop.CampaignView) CampaignResponse {
	resp := CampaignResponse{
		ID:                v.ID,
		Address:           v.Address.Hex(),
		Name:              v.Details.Name,
		Description:       v.Details.Description,
		Artist:            v.Details.Artist.Hex(),
		InitialSupply:     v.Details.InitialSupply.String(),
		Deadline:          v.Details.Deadline.String(),
		FundsGoal:         v.Details.FundsGoal.String(),
		FundsRaised:       v.Details.FundsRaised.String(),
		StartTime:         v.Details.StartTime.String(),
		IsCompleted:       v.Details.IsCompleted,
		RemainingTime:     v.RemainingTime.String(),
		Status:            string(v.Status),
		ContributionCount: v.ContributionCount,
		Distributed:       v.Distributed,
		Withdrawn:         v.Withdrawn,
		Refunded:          v.Refunded,
	}
	if v.TokenArt.Address != (common.Address{}) {
		art := newTokenArtResponse(v.TokenArt.Name, v.TokenArt.Symbol, v.TokenArt.Address, v.TokenArt.InitialSupply, v.TokenArt.Rate)
		resp.TokenArt = &art
	}
	return resp
}

func newTokenArtResponse(name, symbol string, address common.Address, supply, rate *big.Int) TokenArtResponse {
	return TokenArtResponse{
		Name:          name,
		Symbol:        symbol,
		Address:       address.Hex(),
		InitialSupply: supply.String(),
		Rate:          rate.String(),
	}
}

func newBalanceResponse(tokenAddr, holder common.Address, raw *big.Int, decimals uint8) BalanceResponse {
	return BalanceResponse{
		Token:     tokenAddr.Hex(),
		Holder:    holder.Hex(),
		Raw:       raw.String(),
		Formatted: token.Format(raw, decimals),
	}
}

// parseAddress 解析十六进制地址
func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("无效的地址 %s: %q", field, s)
	}
	return common.HexToAddress(s), nil
}

// parseUint 解析非负十进制整数
func parseUint(field, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("无效的整数 %s: %q", field, s)
	}
	return v, nil
}
