package ledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Clock 时间源
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 使用系统时间
var SystemClock Clock = systemClock{}

// FixedClock 固定时间, 测试用
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Receipt 交易回执
type Receipt struct {
	TxHash      common.Hash    `json:"txHash"`
	From        common.Address `json:"from"`
	Method      string         `json:"method"`
	BlockNumber uint64         `json:"blockNumber"`
	BlockHash   common.Hash    `json:"blockHash"`
	Timestamp   uint64         `json:"timestamp"`
	Logs        []*types.Log   `json:"logs"`
}

// Ledger 串行化执行环境: 每笔交易原子执行并单独出块
type Ledger struct {
	mu sync.RWMutex

	id        string
	clock     Clock
	offset    uint64
	number    uint64
	timestamp uint64
	blockHash common.Hash
	nonces    map[common.Address]uint64
	logs      []types.Log

	notifyMu  sync.Mutex // 先于 mu 获取, 保证回调按出块顺序执行
	listeners []func(*Receipt)
}

// New 创建账本, 创世区块时间取当前时钟
func New(clock Clock) *Ledger {
	if clock == nil {
		clock = SystemClock
	}
	l := &Ledger{
		id:     uuid.NewString(),
		clock:  clock,
		nonces: make(map[common.Address]uint64),
	}
	l.timestamp = uint64(clock.Now().Unix())
	l.blockHash = crypto.Keccak256Hash([]byte(l.id))
	return l
}

// ID 账本实例标识, 用作索引数据源
func (l *Ledger) ID() string {
	return l.id
}

// IncreaseTimeMethod 时间推进产生的空块在回执中的方法名
const IncreaseTimeMethod = "evm_increaseTime"

// OnCommit 注册出块回调, 每个新区块 (含时间推进的空块) 通知一次.
// 回调在状态锁外按出块顺序串行执行, 回调中不能再提交交易
func (l *Ledger) OnCommit(fn func(*Receipt)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Submit 执行一笔交易; fn 返回错误时所有状态变更回滚, 不出块
func (l *Ledger) Submit(from common.Address, method string, fn func(ctx *Context) error) (*Receipt, error) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	receipt, listeners, err := l.execute(from, method, fn)
	if err != nil {
		return nil, err
	}
	for _, notify := range listeners {
		notify(receipt)
	}
	return receipt, nil
}

func (l *Ledger) execute(from common.Address, method string, fn func(ctx *Context) error) (*Receipt, []func(*Receipt), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := &Context{
		ledger:    l,
		origin:    from,
		sender:    from,
		number:    l.number + 1,
		timestamp: l.pendingTimestamp(),
		txNonce:   l.nonces[from],
	}
	defer func() {
		if r := recover(); r != nil {
			ctx.rollback()
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		ctx.rollback()
		return nil, nil, err
	}

	if !ctx.nonceUsed {
		l.nonces[from] = ctx.txNonce + 1
	}
	return l.mine(ctx, from, method, ctx.txNonce), l.listeners, nil
}

// View 在读锁下执行只读调用
func (l *Ledger) View(fn func(now uint64)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.viewTimestamp())
}

// IncreaseTime 将链上时间推进 seconds 秒并挖一个空块
func (l *Ledger) IncreaseTime(seconds uint64) uint64 {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	l.offset += seconds
	target := l.timestamp + seconds
	if now := l.wallclock(); now > target {
		target = now
	}
	l.number++
	l.timestamp = target
	l.blockHash = blockHash(l.blockHash, l.number, common.Hash{})
	receipt := &Receipt{
		Method:      IncreaseTimeMethod,
		BlockNumber: l.number,
		BlockHash:   l.blockHash,
		Timestamp:   l.timestamp,
	}
	listeners := l.listeners
	l.mu.Unlock()

	for _, notify := range listeners {
		notify(receipt)
	}
	return receipt.Timestamp
}

// Now 当前视图时间
func (l *Ledger) Now() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.viewTimestamp()
}

// BlockNumber 最新区块号, 与 ethclient.Client 同签名
func (l *Ledger) BlockNumber(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.number, nil
}

// Nonce 返回地址已发送交易数
func (l *Ledger) Nonce(addr common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nonces[addr]
}

func (l *Ledger) wallclock() uint64 {
	return uint64(l.clock.Now().Unix()) + l.offset
}

func (l *Ledger) pendingTimestamp() uint64 {
	ts := l.timestamp + 1
	if now := l.wallclock(); now > ts {
		ts = now
	}
	return ts
}

func (l *Ledger) viewTimestamp() uint64 {
	if now := l.wallclock(); now > l.timestamp {
		return now
	}
	return l.timestamp
}

func (l *Ledger) mine(ctx *Context, from common.Address, method string, nonce uint64) *Receipt {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	txHash := crypto.Keccak256Hash(from.Bytes(), buf[:], []byte(method), []byte(l.id))

	l.number = ctx.number
	l.timestamp = ctx.timestamp
	l.blockHash = blockHash(l.blockHash, l.number, txHash)

	receipt := &Receipt{
		TxHash:      txHash,
		From:        from,
		Method:      method,
		BlockNumber: l.number,
		BlockHash:   l.blockHash,
		Timestamp:   l.timestamp,
	}
	for i, pending := range ctx.logs {
		log := *pending
		log.BlockNumber = l.number
		log.BlockHash = l.blockHash
		log.TxHash = txHash
		log.TxIndex = 0
		log.Index = uint(i)
		l.logs = append(l.logs, log)
		stored := log
		receipt.Logs = append(receipt.Logs, &stored)
	}
	return receipt
}

func blockHash(parent common.Hash, number uint64, txHash common.Hash) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], number)
	return crypto.Keccak256Hash(parent.Bytes(), buf[:], txHash.Bytes())
}

// String 便于日志输出
func (r *Receipt) String() string {
	return fmt.Sprintf("tx %s (%s) block %d", r.TxHash.Hex(), r.Method, r.BlockNumber)
}
