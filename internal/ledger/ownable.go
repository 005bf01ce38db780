package ledger

import "github.com/ethereum/go-ethereum/common"

// Ownable 单一 owner 的权限控制
type Ownable struct {
	owner common.Address
}

// NewOwnable 创建 Ownable
func NewOwnable(owner common.Address) Ownable {
	return Ownable{owner: owner}
}

// Owner 返回 owner 地址
func (o Ownable) Owner() common.Address {
	return o.owner
}

// OnlyOwner 校验调用者为 owner
func (o Ownable) OnlyOwner(ctx *Context) error {
	if ctx.Sender() != o.owner {
		return UnauthorizedAccount(ctx.Sender())
	}
	return nil
}
