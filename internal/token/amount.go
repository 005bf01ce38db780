package token

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(Decimals)), nil)

// Units 整数金额 (如 USDC 个数) 换算为最小单位
func Units(whole *big.Int) *big.Int {
	return new(big.Int).Mul(whole, unit)
}

// Format 将最小单位金额格式化为十进制字符串, 如 1500000 -> "1.5"
func Format(base *big.Int, decimals uint8) string {
	if base == nil {
		return "0"
	}
	return decimal.NewFromBigInt(base, -int32(decimals)).String()
}

// ParseUnits 解析十进制字符串为最小单位金额, 小数位不能超过 decimals
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q: negative", s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimals", s, decimals)
	}
	return scaled.BigInt(), nil
}

// Share 出资 amount 个整币可得的奖励代币最小单位: amount*10^6*supply/goal
func Share(amount, supply, goal *big.Int) *big.Int {
	share := Units(amount)
	share.Mul(share, supply)
	return share.Div(share, goal)
}
