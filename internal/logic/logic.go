// Package logic 提供投影库的查询逻辑, 所有查询都限定在一个来源内.
package logic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// sum 聚合金额的扫描目标
type sum struct {
	Total decimal.Decimal
}

// NormalizePage 修正分页参数, 页大小上限 100
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// paginate 统计总数并查询一页数据
func paginate[T any](query *gorm.DB, page, pageSize int, order string) ([]T, int64, error) {
	var (
		items []T
		total int64
	)
	page, pageSize = NormalizePage(page, pageSize)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取总数失败: %w", err)
	}
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order(order).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("获取列表失败: %w", err)
	}
	return items, total, nil
}

func first[T any](query *gorm.DB) (*T, error) {
	var item T
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询失败: %w", err)
	}
	return &item, nil
}
