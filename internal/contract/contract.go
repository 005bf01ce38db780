package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/blues/artdrop/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EventUnknown 无法识别的事件
const EventUnknown = "Unknown"

// ErrNotBound 合约未绑定链上后端
var ErrNotBound = errors.New("contract is not bound to a backend")

// Contract 统一合约包装器
type Contract struct {
	address  common.Address
	abi      abi.ABI
	name     string
	blockNum uint64
	bound    *bind.BoundContract
}

// NewContract 创建合约实例, blockNum 为部署区块号
func NewContract(name string, parsed abi.ABI, address common.Address, blockNum uint64) *Contract {
	return &Contract{
		address:  address,
		abi:      parsed,
		name:     name,
		blockNum: blockNum,
	}
}

// Bind 绑定链上后端, 用于只读调用
func (c *Contract) Bind(backend bind.ContractBackend) {
	c.bound = bind.NewBoundContract(c.address, c.abi, backend, backend, backend)
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// GetABI 获取合约ABI
func (c *Contract) GetABI() abi.ABI {
	return c.abi
}

// GetName 获取合约名称
func (c *Contract) GetName() string {
	return c.name
}

// GetBlockNum 获取合约部署区块号
func (c *Contract) GetBlockNum() uint64 {
	return c.blockNum
}

// Call 调用只读方法
func (c *Contract) Call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	if c.bound == nil {
		return nil, ErrNotBound
	}
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("call %s.%s: %w", c.name, method, err)
	}
	return out, nil
}

// ParseEvent 解析事件日志
func (c *Contract) ParseEvent(log types.Log) (map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log %s/%d has no topics", log.TxHash.Hex(), log.Index)
	}
	event, err := c.abi.EventByID(log.Topics[0])
	if err != nil {
		logger.Warn("Unknown event signature: %s in contract %s", log.Topics[0].Hex(), c.name)
		return map[string]interface{}{
			"eventName":   EventUnknown,
			"signature":   log.Topics[0].Hex(),
			"contract":    c.name,
			"txHash":      log.TxHash.Hex(),
			"blockNumber": log.BlockNumber,
			"logIndex":    log.Index,
		}, nil
	}
	return c.parseEvent(log, *event)
}

// parseEvent 解析事件
func (c *Contract) parseEvent(log types.Log, event abi.Event) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	result["eventName"] = event.Name
	result["contract"] = c.name
	result["txHash"] = log.TxHash.Hex()
	result["blockNumber"] = log.BlockNumber
	result["logIndex"] = log.Index

	// 索引参数
	topic := 1
	for _, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if topic >= len(log.Topics) {
			return nil, fmt.Errorf("event %s: missing topic for %s", event.Name, input.Name)
		}
		result[input.Name] = parseTopicValue(log.Topics[topic], input.Type)
		topic++
	}

	// 非索引参数
	nonIndexed := event.Inputs.NonIndexed()
	if len(nonIndexed) > 0 {
		values, err := nonIndexed.Unpack(log.Data)
		if err != nil {
			return nil, fmt.Errorf("event %s: unpack data: %w", event.Name, err)
		}
		for i, input := range nonIndexed {
			result[input.Name] = values[i]
		}
	}

	return result, nil
}

// parseTopicValue 解析主题值
func parseTopicValue(topic common.Hash, t abi.Type) interface{} {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes())
	case abi.AddressTy:
		return common.BytesToAddress(topic.Bytes())
	case abi.BoolTy:
		return topic.Big().Sign() > 0
	default:
		return topic.Hex()
	}
}

// Topics 返回 ArtDrop 业务事件的签名, 用于日志过滤
func Topics() []common.Hash {
	topics := []common.Hash{Event(ArtdropV2, EventCampaignCreated).ID}
	for _, name := range []string{
		EventCampaignStarted,
		EventContributionDone,
		EventTokenArtCreated,
		EventTokensDistributed,
		EventCampaignFinishedAndFundsWithdrawn,
		EventWithdrawIncompleteCampaign,
	} {
		topics = append(topics, Event(Campaign, name).ID)
	}
	return topics
}

var decoders = []*Contract{
	NewContract(NameArtdrop, ArtdropV2, common.Address{}, 0),
	NewContract(NameCampaign, Campaign, common.Address{}, 0),
	NewContract(NameERC20, ERC20, common.Address{}, 0),
}

// DecodeLog 按事件签名在全部 ABI 中查找并解析日志, 用于展示任意来源的日志
func DecodeLog(log types.Log) (map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log %s/%d has no topics", log.TxHash.Hex(), log.Index)
	}
	for _, c := range decoders {
		if event, err := c.abi.EventByID(log.Topics[0]); err == nil {
			result, err := c.parseEvent(log, *event)
			if err != nil {
				return nil, err
			}
			result["address"] = log.Address.Hex()
			return result, nil
		}
	}
	return map[string]interface{}{
		"eventName":   EventUnknown,
		"signature":   log.Topics[0].Hex(),
		"address":     log.Address.Hex(),
		"txHash":      log.TxHash.Hex(),
		"blockNumber": log.BlockNumber,
		"logIndex":    log.Index,
	}, nil
}
