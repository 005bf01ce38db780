package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LogSource 可按区块范围过滤日志的链, 由 ethclient.Client 与 ledger.Ledger 实现
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// Block 区块操作工具类
type Block struct {
	source LogSource
}

// NewBlock 创建区块工具类实例
func NewBlock(source LogSource) *Block {
	return &Block{source: source}
}

// GetBatchBlockLogs 批量获取区块范围内的日志; addresses 为空时不按地址过滤
func (b *Block) GetBatchBlockLogs(ctx context.Context, addresses []common.Address, topics []common.Hash, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topics) > 0 {
		query.Topics = [][]common.Hash{topics}
	}
	return b.source.FilterLogs(ctx, query)
}

// GetCurrentBlockNumber 获取当前最新区块号
func (b *Block) GetCurrentBlockNumber(ctx context.Context) (uint64, error) {
	return b.source.BlockNumber(ctx)
}
