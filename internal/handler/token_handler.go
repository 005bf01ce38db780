package handler

import (
	"net/http"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/metrics"
	"github.com/blues/artdrop/internal/token"
	"github.com/gin-gonic/gin"
)

// TokenHandler USDC 与奖励代币处理器
type TokenHandler struct {
	node    *artdrop.Node
	metrics *metrics.Metrics
}

// NewTokenHandler 创建代币处理器
func NewTokenHandler(node *artdrop.Node, m *metrics.Metrics) *TokenHandler {
	return &TokenHandler{node: node, metrics: m}
}

// MintUSDC 增发 USDC, 任何地址都可以调用
func (h *TokenHandler) MintUSDC(c *gin.Context) {
	from, ok := sender(c)
	if !ok {
		return
	}
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := token.ParseUnits(req.Amount, token.Decimals)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.node.MintUSDC(from, to, amount)
	recordTx(h.metrics, "mint", err)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "mint 成功", newReceiptResponse(receipt))
}

// ApproveUSDC 授权 spender 划转发送者的 USDC
func (h *TokenHandler) ApproveUSDC(c *gin.Context) {
	from, ok := sender(c)
	if !ok {
		return
	}
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	spender, err := parseAddress("spender", req.Spender)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := token.ParseUnits(req.Amount, token.Decimals)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.node.ApproveUSDC(from, spender, amount)
	recordTx(h.metrics, "approve", err)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "approve 成功", newReceiptResponse(receipt))
}

// GetUSDCBalance 查询 USDC 余额与对各活动的授权
func (h *TokenHandler) GetUSDCBalance(c *gin.Context) {
	holder, err := parseAddress("address", c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	balance := newBalanceResponse(h.node.USDCAddress(), holder, h.node.USDCBalance(holder), token.Decimals)

	var spender = c.Query("spender")
	if spender == "" {
		SuccessResponse(c, http.StatusOK, "", balance)
		return
	}
	spenderAddr, err := parseAddress("spender", spender)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	allowance := h.node.USDCAllowance(holder, spenderAddr)
	SuccessResponse(c, http.StatusOK, "", gin.H{
		"balance":   balance,
		"allowance": token.Format(allowance, token.Decimals),
	})
}

// GetTokenBalance 查询任意本节点代币余额
func (h *TokenHandler) GetTokenBalance(c *gin.Context) {
	tokenAddr, err := parseAddress("token", c.Param("token"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	holder, err := parseAddress("address", c.Param("address"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	balance, err := h.node.BalanceOf(tokenAddr, holder)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", newBalanceResponse(tokenAddr, holder, balance, token.Decimals))
}

// TransferToken 转账本节点代币
func (h *TokenHandler) TransferToken(c *gin.Context) {
	from, ok := sender(c)
	if !ok {
		return
	}
	tokenAddr, err := parseAddress("token", c.Param("token"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := token.ParseUnits(req.Amount, token.Decimals)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.node.TransferToken(from, tokenAddr, to, amount)
	recordTx(h.metrics, "transfer", err)
	if err != nil {
		FailResponse(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "transfer 成功", newReceiptResponse(receipt))
}
