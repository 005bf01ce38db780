package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/artdrop/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatusProvider 索引器状态
type StatusProvider interface {
	GetStatus() map[string]interface{}
}

// IndexHandler 投影库查询处理器
type IndexHandler struct {
	defaultSource   string
	campaignLogic   *logic.CampaignLogic
	contributeLogic *logic.ContributeRecordLogic
	refundLogic     *logic.RefundRecordLogic
	eventLogic      *logic.EventLogic
	monitors        []StatusProvider
}

// NewIndexHandler 创建投影查询处理器, 未指定 source 时使用 defaultSource
func NewIndexHandler(db *gorm.DB, defaultSource string, monitors ...StatusProvider) *IndexHandler {
	return &IndexHandler{
		defaultSource:   defaultSource,
		campaignLogic:   logic.NewCampaignLogic(db),
		contributeLogic: logic.NewContributeRecordLogic(db),
		refundLogic:     logic.NewRefundRecordLogic(db),
		eventLogic:      logic.NewEventLogic(db),
		monitors:        monitors,
	}
}

// GetCampaigns 获取活动列表
func (h *IndexHandler) GetCampaigns(c *gin.Context) {
	page, pageSize := pageParams(c)
	campaigns, total, err := h.campaignLogic.GetCampaigns(h.source(c), c.Query("status"), page, pageSize)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"campaigns":  campaigns,
		"pagination": pagination(page, pageSize, total),
	})
}

// GetCampaign 获取活动详情
func (h *IndexHandler) GetCampaign(c *gin.Context) {
	id, ok := indexID(c)
	if !ok {
		return
	}
	campaign, err := h.campaignLogic.GetCampaign(h.source(c), id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", campaign)
}

// GetCampaignContributions 获取活动出资记录
func (h *IndexHandler) GetCampaignContributions(c *gin.Context) {
	id, ok := indexID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	records, total, err := h.contributeLogic.GetCampaignContributeRecords(h.source(c), id, page, pageSize)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"contributions": records,
		"pagination":    pagination(page, pageSize, total),
	})
}

// GetCampaignStats 获取活动统计
func (h *IndexHandler) GetCampaignStats(c *gin.Context) {
	id, ok := indexID(c)
	if !ok {
		return
	}
	source := h.source(c)
	stats, err := h.campaignLogic.GetCampaignStats(source, id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	contributeStats, err := h.contributeLogic.GetContributeStats(source, id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	stats["contributions"] = contributeStats
	SuccessResponse(c, http.StatusOK, "", stats)
}

// GetCampaignRefunds 获取活动退款记录
func (h *IndexHandler) GetCampaignRefunds(c *gin.Context) {
	id, ok := indexID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	refunds, total, err := h.refundLogic.GetCampaignRefunds(h.source(c), id, page, pageSize)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"refunds":    refunds,
		"pagination": pagination(page, pageSize, total),
	})
}

// GetSettlement 获取活动结算记录
func (h *IndexHandler) GetSettlement(c *gin.Context) {
	id, ok := indexID(c)
	if !ok {
		return
	}
	settlement, err := h.refundLogic.GetSettlement(h.source(c), id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", settlement)
}

// GetTokenArt 获取活动奖励代币
func (h *IndexHandler) GetTokenArt(c *gin.Context) {
	id, ok := indexID(c)
	if !ok {
		return
	}
	tokenArt, err := h.refundLogic.GetTokenArt(h.source(c), id)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", tokenArt)
}

// GetDistributions 获取代币分发记录
func (h *IndexHandler) GetDistributions(c *gin.Context) {
	id, ok := indexID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	records, total, err := h.refundLogic.GetDistributions(h.source(c), id, page, pageSize)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"distributions": records,
		"pagination":    pagination(page, pageSize, total),
	})
}

// GetContributorRecords 获取出资人的出资记录
func (h *IndexHandler) GetContributorRecords(c *gin.Context) {
	address, err := parseAddress("address", c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	page, pageSize := pageParams(c)
	records, total, err := h.contributeLogic.GetContributorRecords(h.source(c), address.Hex(), page, pageSize)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"contributions": records,
		"pagination":    pagination(page, pageSize, total),
	})
}

// GetEvents 获取已索引事件, 支持按 type 或 txHash 过滤
func (h *IndexHandler) GetEvents(c *gin.Context) {
	source := h.source(c)
	if txHash := c.Query("txHash"); txHash != "" {
		events, err := h.eventLogic.GetEventsByTxHash(source, txHash)
		if err != nil {
			FailResponse(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "", events)
		return
	}

	page, pageSize := pageParams(c)
	events, total, err := h.eventLogic.GetEvents(source, c.Query("type"), page, pageSize)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"events":     events,
		"pagination": pagination(page, pageSize, total),
	})
}

// GetStats 获取来源整体统计与索引器状态
func (h *IndexHandler) GetStats(c *gin.Context) {
	source := h.source(c)
	stats, err := h.campaignLogic.GetAllCampaignStats(source)
	if err != nil {
		FailResponse(c, err)
		return
	}
	events, err := h.eventLogic.GetEventStatistics(source)
	if err != nil {
		FailResponse(c, err)
		return
	}
	lastBlock, err := h.eventLogic.GetLastProcessedBlock(source)
	if err != nil {
		FailResponse(c, err)
		return
	}

	monitors := make([]map[string]interface{}, 0, len(h.monitors))
	for _, m := range h.monitors {
		monitors = append(monitors, m.GetStatus())
	}
	stats["events"] = events
	stats["lastProcessedBlock"] = lastBlock
	stats["monitors"] = monitors
	SuccessResponse(c, http.StatusOK, "", stats)
}

func (h *IndexHandler) source(c *gin.Context) string {
	return c.DefaultQuery("source", h.defaultSource)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return logic.NormalizePage(page, pageSize)
}

// indexID 解析投影中的活动 id, 失败时已写入 400 响应
func indexID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, false
	}
	return id, true
}
