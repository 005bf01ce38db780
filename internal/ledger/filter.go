package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FilterLogs 按区块范围、地址和 topic 过滤日志, 语义与 eth_getLogs 相同
func (l *Ledger) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	from := uint64(0)
	if q.FromBlock != nil {
		from = q.FromBlock.Uint64()
	}
	to := l.number
	if q.ToBlock != nil && q.ToBlock.Sign() >= 0 && q.ToBlock.Uint64() < to {
		to = q.ToBlock.Uint64()
	}

	var result []types.Log
	for _, log := range l.logs {
		if log.BlockNumber < from || log.BlockNumber > to {
			continue
		}
		if q.BlockHash != nil && log.BlockHash != *q.BlockHash {
			continue
		}
		if !matchAddress(log.Address, q.Addresses) || !matchTopics(log.Topics, q.Topics) {
			continue
		}
		result = append(result, log)
	}
	return result, nil
}

// Logs 返回全部日志副本
func (l *Ledger) Logs() []types.Log {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.Log, len(l.logs))
	copy(out, l.logs)
	return out
}

func matchAddress(addr common.Address, addrs []common.Address) bool {
	if len(addrs) == 0 {
		return true
	}
	for _, a := range addrs {
		if a == addr {
			return true
		}
	}
	return false
}

func matchTopics(topics []common.Hash, filter [][]common.Hash) bool {
	if len(filter) > len(topics) {
		return false
	}
	for i, alternatives := range filter {
		if len(alternatives) == 0 {
			continue
		}
		found := false
		for _, t := range alternatives {
			if t == topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
