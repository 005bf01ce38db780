package handler

import (
	"errors"
	"net/http"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/logic"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// revertStatus 回滚分类对应的 HTTP 状态码
var revertStatus = map[ledger.ErrorKind]int{
	ledger.KindUnauthorized: http.StatusForbidden,
	ledger.KindNotFound:     http.StatusNotFound,
	ledger.KindState:        http.StatusConflict,
	ledger.KindValidation:   http.StatusBadRequest,
	ledger.KindToken:        http.StatusUnprocessableEntity,
}

// FailResponse 按错误类型选择状态码: 合约回滚按分类, 记录不存在为 404, 其余为 500
func FailResponse(c *gin.Context, err error) {
	if kind := ledger.KindOf(err); kind != "" {
		c.JSON(revertStatus[kind], Response{
			Success: false,
			Message: err.Error(),
			Data:    gin.H{"kind": kind},
		})
		return
	}
	switch {
	case errors.Is(err, logic.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, artdrop.ErrUnknownToken):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		logger.Error("Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

// pagination 分页信息
func pagination(page, pageSize int, total int64) Pagination {
	page, pageSize = logic.NormalizePage(page, pageSize)
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}
