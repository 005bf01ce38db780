// Package token 实现运行在账本上的 ERC20 代币: MockUSDC 与 TokenArt.
package token

import (
	"math/big"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// Decimals MockUSDC 与 TokenArt 的精度
const Decimals uint8 = 6

var (
	transferEvent = contract.Event(contract.ERC20, contract.EventTransfer)
	approvalEvent = contract.Event(contract.ERC20, contract.EventApproval)

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// Token ERC20 代币状态. 零值 minter 表示任何人都可以 mint
type Token struct {
	address  common.Address
	name     string
	symbol   string
	decimals uint8
	minter   common.Address

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
}

// Deploy 由当前调用者部署一个新代币
func Deploy(ctx *ledger.Context, name, symbol string, decimals uint8, minter common.Address) *Token {
	return &Token{
		address:     ctx.CreateAddress(),
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		minter:      minter,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

// DeployMockUSDC 部署测试用 USDC, mint 不受限
func DeployMockUSDC(ctx *ledger.Context) *Token {
	return Deploy(ctx, "Mock USDC", "USDC", Decimals, common.Address{})
}

// DeployTokenArt 部署奖励代币, 调用者 (活动合约) 成为唯一 minter
func DeployTokenArt(ctx *ledger.Context, name, symbol string) *Token {
	return Deploy(ctx, name, symbol, Decimals, ctx.Sender())
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() uint8         { return t.decimals }
func (t *Token) Minter() common.Address  { return t.minter }

// TotalSupply 总发行量
func (t *Token) TotalSupply() *big.Int {
	return new(big.Int).Set(t.totalSupply)
}

// BalanceOf 查询余额
func (t *Token) BalanceOf(account common.Address) *big.Int {
	return new(big.Int).Set(t.balance(account))
}

// Allowance 查询授权额度
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	return new(big.Int).Set(t.allowance(owner, spender))
}

// Transfer 调用者向 to 转账
func (t *Token) Transfer(ctx *ledger.Context, to common.Address, value *big.Int) error {
	return t.transfer(ctx, ctx.Sender(), to, value)
}

// Approve 调用者授权 spender 可划转 value
func (t *Token) Approve(ctx *ledger.Context, spender common.Address, value *big.Int) error {
	owner := ctx.Sender()
	if owner == (common.Address{}) {
		return invalidAddress(ErrInvalidSender, owner)
	}
	if spender == (common.Address{}) {
		return invalidAddress(ErrInvalidSpender, spender)
	}
	t.setAllowance(ctx, owner, spender, value)
	return ctx.Emit(t.address, approvalEvent, owner, spender, new(big.Int).Set(value))
}

// TransferFrom 调用者作为 spender 从 from 划转到 to
func (t *Token) TransferFrom(ctx *ledger.Context, from, to common.Address, value *big.Int) error {
	spender := ctx.Sender()
	current := t.allowance(from, spender)
	if current.Cmp(maxUint256) != 0 {
		if current.Cmp(value) < 0 {
			return insufficientAllowance(spender, current, value)
		}
		t.setAllowance(ctx, from, spender, new(big.Int).Sub(current, value))
	}
	return t.transfer(ctx, from, to, value)
}

// Mint 增发; 设置了 minter 时只有 minter 可以调用
func (t *Token) Mint(ctx *ledger.Context, to common.Address, amount *big.Int) error {
	if t.minter != (common.Address{}) && ctx.Sender() != t.minter {
		return ledger.UnauthorizedAccount(ctx.Sender())
	}
	if to == (common.Address{}) {
		return invalidAddress(ErrInvalidReceiver, to)
	}

	supply := t.totalSupply
	ctx.Journal(func() { t.totalSupply = supply })
	t.totalSupply = new(big.Int).Add(supply, amount)
	t.setBalance(ctx, to, new(big.Int).Add(t.balance(to), amount))

	return ctx.Emit(t.address, transferEvent, common.Address{}, to, new(big.Int).Set(amount))
}

func (t *Token) transfer(ctx *ledger.Context, from, to common.Address, value *big.Int) error {
	if from == (common.Address{}) {
		return invalidAddress(ErrInvalidSender, from)
	}
	if to == (common.Address{}) {
		return invalidAddress(ErrInvalidReceiver, to)
	}
	fromBalance := t.balance(from)
	if fromBalance.Cmp(value) < 0 {
		return insufficientBalance(from, fromBalance, value)
	}

	t.setBalance(ctx, from, new(big.Int).Sub(fromBalance, value))
	t.setBalance(ctx, to, new(big.Int).Add(t.balance(to), value))
	return ctx.Emit(t.address, transferEvent, from, to, new(big.Int).Set(value))
}

func (t *Token) balance(account common.Address) *big.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return new(big.Int)
}

func (t *Token) allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.allowances[owner][spender]; ok {
		return a
	}
	return new(big.Int)
}

func (t *Token) setBalance(ctx *ledger.Context, account common.Address, value *big.Int) {
	prev, existed := t.balances[account]
	t.balances[account] = value
	ctx.Journal(func() {
		if existed {
			t.balances[account] = prev
		} else {
			delete(t.balances, account)
		}
	})
}

func (t *Token) setAllowance(ctx *ledger.Context, owner, spender common.Address, value *big.Int) {
	spenders, ok := t.allowances[owner]
	if !ok {
		spenders = make(map[common.Address]*big.Int)
		t.allowances[owner] = spenders
	}
	prev, existed := spenders[spender]
	spenders[spender] = new(big.Int).Set(value)
	ctx.Journal(func() {
		if existed {
			spenders[spender] = prev
		} else {
			delete(spenders, spender)
		}
	})
}
