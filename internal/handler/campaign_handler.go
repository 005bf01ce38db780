package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// SenderHeader 交易发送者地址请求头
const SenderHeader = "X-Sender"

// CampaignHandler 活动交易与链上查询处理器
type CampaignHandler struct {
	node    *artdrop.Node
	metrics *metrics.Metrics
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(node *artdrop.Node, m *metrics.Metrics) *CampaignHandler {
	return &CampaignHandler{node: node, metrics: m}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	from, ok := sender(c)
	if !ok {
		return
	}
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	params, err := req.params()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	receipt, id, err := h.node.CreateCampaign(from, params)
	h.record("createCampaign", err)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "活动创建成功", gin.H{
		"campaignId": id,
		"receipt":    newReceiptResponse(receipt),
	})
}

// StartCampaign 开始活动
func (h *CampaignHandler) StartCampaign(c *gin.Context) {
	h.campaignTx(c, "startCampaign", h.node.StartCampaign)
}

// Contribute 出资
func (h *CampaignHandler) Contribute(c *gin.Context) {
	from, ok := sender(c)
	if !ok {
		return
	}
	id, ok := campaignID(c)
	if !ok {
		return
	}
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseUint("amount", req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.node.Contribute(from, id, amount)
	h.respondTx(c, "contribute", receipt, err)
}

// CreateTokenArt 创建奖励代币
func (h *CampaignHandler) CreateTokenArt(c *gin.Context) {
	from, ok := sender(c)
	if !ok {
		return
	}
	id, ok := campaignID(c)
	if !ok {
		return
	}
	var req CreateTokenArtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.node.CreateTokenArt(from, id, req.Name, req.Symbol)
	h.respondTx(c, "createTokenArt", receipt, err)
}

// DistributeTokens 分发奖励代币
func (h *CampaignHandler) DistributeTokens(c *gin.Context) {
	h.campaignTx(c, "distributeTokens", h.node.DistributeTokens)
}

// WithdrawFunds 提取募集资金
func (h *CampaignHandler) WithdrawFunds(c *gin.Context) {
	h.campaignTx(c, "withdrawFunds", h.node.WithdrawFunds)
}

// WithdrawIncompleteCampaign 退还失败活动的出资
func (h *CampaignHandler) WithdrawIncompleteCampaign(c *gin.Context) {
	h.campaignTx(c, "withdrawIncompleteCampaign", h.node.WithdrawIncompleteCampaign)
}

// GetCampaigns 获取全部活动
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	views := h.node.Campaigns()
	campaigns := make([]CampaignResponse, 0, len(views))
	for _, v := range views {
		campaigns = append(campaigns, newCampaignResponse(v))
	}
	SuccessResponse(c, http.StatusOK, "", campaigns)
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	view, err := h.node.Campaign(id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", newCampaignResponse(view))
}

// GetTokenArt 获取奖励代币信息 (getTokenArt)
func (h *CampaignHandler) GetTokenArt(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	info, err := h.node.TokenArt(id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", newTokenArtResponse(info.Name, info.Symbol, info.Address, info.InitialSupply, info.Rate))
}

// GetRemainingTime 获取剩余秒数 (getRemainingTime)
func (h *CampaignHandler) GetRemainingTime(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	remaining, err := h.node.RemainingTime(id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"remainingTime": remaining.String()})
}

// GetContributions 获取链上出资记录 (getContributions)
func (h *CampaignHandler) GetContributions(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	list, err := h.node.Contributions(id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	contributions := make([]ContributionResponse, 0, len(list))
	for _, contribution := range list {
		contributions = append(contributions, ContributionResponse{
			Contributor: contribution.Contributor.Hex(),
			Amount:      contribution.Amount.String(),
		})
	}
	SuccessResponse(c, http.StatusOK, "", contributions)
}

// campaignTx 只需要活动 id 的交易
func (h *CampaignHandler) campaignTx(c *gin.Context, method string, fn func(from common.Address, id uint32) (*ledger.Receipt, error)) {
	from, ok := sender(c)
	if !ok {
		return
	}
	id, ok := campaignID(c)
	if !ok {
		return
	}
	receipt, err := fn(from, id)
	h.respondTx(c, method, receipt, err)
}

func (h *CampaignHandler) respondTx(c *gin.Context, method string, receipt *ledger.Receipt, err error) {
	h.record(method, err)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, method+" 成功", newReceiptResponse(receipt))
}

func (h *CampaignHandler) record(method string, err error) {
	recordTx(h.metrics, method, err)
}

func (r CreateCampaignRequest) params() (campaign.Params, error) {
	artist, err := parseAddress("artist", r.Artist)
	if err != nil {
		return campaign.Params{}, err
	}
	goal, err := parseUint("fundsGoal", r.FundsGoal)
	if err != nil {
		return campaign.Params{}, err
	}
	deadline, err := parseUint("deadline", r.Deadline)
	if err != nil {
		return campaign.Params{}, err
	}
	supply, err := parseUint("initialSupply", r.InitialSupply)
	if err != nil {
		return campaign.Params{}, err
	}
	return campaign.Params{
		Name:          r.Name,
		Description:   r.Description,
		Artist:        artist,
		FundsGoal:     goal,
		Deadline:      deadline,
		InitialSupply: supply,
	}, nil
}

// sender 读取交易发送者, 失败时已写入 400 响应
func sender(c *gin.Context) (common.Address, bool) {
	from, err := parseAddress(SenderHeader, c.GetHeader(SenderHeader))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return common.Address{}, false
	}
	return from, true
}

// campaignID 解析路径中的活动 id, 失败时已写入 400 响应
func campaignID(c *gin.Context) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, false
	}
	return uint32(id), true
}

// recordTx 记录交易结果指标
func recordTx(m *metrics.Metrics, method string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if ledger.IsRevert(err) {
		result = "reverted"
	} else if err != nil {
		result = "error"
	}
	m.Transactions.WithLabelValues(method, result).Inc()
}
