package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrorKind 回滚错误分类
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized" // 非 owner 调用
	KindNotFound     ErrorKind = "not_found"    // 活动不存在
	KindState        ErrorKind = "state"        // 状态前置条件不满足
	KindValidation   ErrorKind = "validation"   // 参数校验失败
	KindToken        ErrorKind = "token"        // 代币转账失败
)

// RevertError 带 reason 字符串的回滚, 对应 require(cond, "reason")
type RevertError struct {
	Kind   ErrorKind
	Reason string
}

// Revert 创建回滚错误
func Revert(kind ErrorKind, reason string) *RevertError {
	return &RevertError{Kind: kind, Reason: reason}
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

// CustomError 自定义错误, 对应 solidity 的 error Name(args)
type CustomError struct {
	Kind ErrorKind
	Name string
	Args []interface{}
}

func (e *CustomError) Error() string {
	args := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		switch v := a.(type) {
		case common.Address:
			args = append(args, v.Hex())
		case *big.Int:
			args = append(args, v.String())
		default:
			args = append(args, fmt.Sprint(v))
		}
	}
	return fmt.Sprintf("execution reverted: %s(%s)", e.Name, strings.Join(args, ", "))
}

// Is 按错误名匹配, 参数不参与比较
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Name == e.Name
}

// ErrUnauthorized 用于 errors.Is 匹配任意 OwnableUnauthorizedAccount
var ErrUnauthorized = &CustomError{Kind: KindUnauthorized, Name: "OwnableUnauthorizedAccount"}

// UnauthorizedAccount 创建 OwnableUnauthorizedAccount(account)
func UnauthorizedAccount(account common.Address) *CustomError {
	return &CustomError{Kind: KindUnauthorized, Name: ErrUnauthorized.Name, Args: []interface{}{account}}
}

// KindOf 返回错误分类, 非回滚错误返回空串
func KindOf(err error) ErrorKind {
	var re *RevertError
	if errors.As(err, &re) {
		return re.Kind
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsRevert 判断是否为合约回滚
func IsRevert(err error) bool {
	return KindOf(err) != ""
}
