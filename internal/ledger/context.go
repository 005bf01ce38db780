package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Context 单笔交易的执行上下文, 同时是调用者身份的授权凭证
type Context struct {
	ledger    *Ledger
	origin    common.Address
	sender    common.Address
	depth     int
	number    uint64
	timestamp uint64
	txNonce   uint64
	nonceUsed bool

	journal []func()
	logs    []*types.Log
}

// Sender 当前调用者 (msg.sender)
func (c *Context) Sender() common.Address {
	return c.sender
}

// Origin 交易发起者 (tx.origin)
func (c *Context) Origin() common.Address {
	return c.origin
}

// Timestamp 当前区块时间 (block.timestamp)
func (c *Context) Timestamp() uint64 {
	return c.timestamp
}

// BlockNumber 当前区块号
func (c *Context) BlockNumber() uint64 {
	return c.number
}

// Journal 记录一条撤销操作, 交易回滚时逆序执行
func (c *Context) Journal(undo func()) {
	c.journal = append(c.journal, undo)
}

// CallFrom 以合约 contract 的身份调用 fn, 即被调方看到的 msg.sender 为 contract
func (c *Context) CallFrom(contract common.Address, fn func(ctx *Context) error) error {
	prev := c.sender
	c.sender = contract
	c.depth++
	defer func() {
		c.sender = prev
		c.depth--
	}()
	return fn(c)
}

// CreateAddress 为当前调用者部署的新合约分配地址
func (c *Context) CreateAddress() common.Address {
	l := c.ledger
	deployer := c.sender
	nonce := l.nonces[deployer]
	if c.depth == 0 {
		// 外部账户部署消耗交易 nonce
		c.nonceUsed = true
	}
	c.setNonce(deployer, nonce+1)

	addr := crypto.CreateAddress(deployer, nonce)
	c.setNonce(addr, 1)
	return addr
}

func (c *Context) setNonce(addr common.Address, nonce uint64) {
	l := c.ledger
	prev, existed := l.nonces[addr]
	l.nonces[addr] = nonce
	c.Journal(func() {
		if existed {
			l.nonces[addr] = prev
		} else {
			delete(l.nonces, addr)
		}
	})
}

// Emit 以合约 address 的名义记录事件, 编码方式与 EVM 日志一致
func (c *Context) Emit(address common.Address, event abi.Event, args ...interface{}) error {
	if len(args) != len(event.Inputs) {
		return fmt.Errorf("event %s: expected %d arguments, got %d", event.Name, len(event.Inputs), len(args))
	}

	topics := []common.Hash{event.ID}
	data := make([]interface{}, 0, len(args))
	for i, input := range event.Inputs {
		if !input.Indexed {
			data = append(data, args[i])
			continue
		}
		topic, err := topicOf(args[i])
		if err != nil {
			return fmt.Errorf("event %s: indexed %s: %w", event.Name, input.Name, err)
		}
		topics = append(topics, topic)
	}

	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return fmt.Errorf("event %s: pack: %w", event.Name, err)
	}

	c.logs = append(c.logs, &types.Log{
		Address: address,
		Topics:  topics,
		Data:    packed,
	})
	return nil
}

func (c *Context) rollback() {
	for i := len(c.journal) - 1; i >= 0; i-- {
		c.journal[i]()
	}
	c.journal = nil
	c.logs = nil
}

func topicOf(v interface{}) (common.Hash, error) {
	switch t := v.(type) {
	case common.Address:
		return common.BytesToHash(t.Bytes()), nil
	case *big.Int:
		return common.BigToHash(t), nil
	case common.Hash:
		return t, nil
	default:
		return common.Hash{}, fmt.Errorf("unsupported indexed type %T", v)
	}
}
