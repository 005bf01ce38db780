package handler

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/gin-gonic/gin"
)

// DevHandler 开发辅助接口: 时间推进与原始日志
type DevHandler struct {
	node *artdrop.Node
}

// NewDevHandler 创建开发处理器
func NewDevHandler(node *artdrop.Node) *DevHandler {
	return &DevHandler{node: node}
}

// IncreaseTime 推进链上时间
func (h *DevHandler) IncreaseTime(c *gin.Context) {
	var req IncreaseTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	ts := h.node.IncreaseTime(req.Seconds)
	SuccessResponse(c, http.StatusOK, "时间已推进", gin.H{"timestamp": ts})
}

// GetLogs 按区块范围返回解码后的账本日志
func (h *DevHandler) GetLogs(c *gin.Context) {
	query := ethereum.FilterQuery{}
	if from := c.Query("fromBlock"); from != "" {
		n, err := strconv.ParseUint(from, 10, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的 fromBlock")
			return
		}
		query.FromBlock = new(big.Int).SetUint64(n)
	}
	if to := c.Query("toBlock"); to != "" {
		n, err := strconv.ParseUint(to, 10, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的 toBlock")
			return
		}
		query.ToBlock = new(big.Int).SetUint64(n)
	}

	logs, err := h.node.Ledger().FilterLogs(c.Request.Context(), query)
	if err != nil {
		FailResponse(c, err)
		return
	}
	events := make([]gin.H, 0, len(logs))
	for _, l := range logs {
		decoded, err := contract.DecodeLog(l)
		if err != nil {
			logger.Warn("Failed to decode log %d of %s: %v", l.Index, l.TxHash.Hex(), err)
			continue
		}
		events = append(events, gin.H{
			"blockNumber": l.BlockNumber,
			"txHash":      l.TxHash.Hex(),
			"logIndex":    l.Index,
			"event":       decoded,
		})
	}
	SuccessResponse(c, http.StatusOK, "", events)
}
