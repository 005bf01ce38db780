package contract

import (
	"sync"

	"github.com/blues/artdrop/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ContractManager 按地址管理已知合约; 活动合约在索引到 CampaignCreated 后动态注册
type ContractManager struct {
	mu        sync.RWMutex
	contracts map[common.Address]*Contract
	backend   bind.ContractBackend
}

// NewContractManager 创建合约管理器, backend 为 nil 时合约不可做链上调用
func NewContractManager(backend bind.ContractBackend) *ContractManager {
	return &ContractManager{
		contracts: make(map[common.Address]*Contract),
		backend:   backend,
	}
}

// Register 注册合约, 已注册的地址直接返回原实例
func (m *ContractManager) Register(name string, parsed abi.ABI, address common.Address, blockNum uint64) *Contract {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.contracts[address]; ok {
		return existing
	}
	c := NewContract(name, parsed, address, blockNum)
	if m.backend != nil {
		c.Bind(m.backend)
	}
	m.contracts[address] = c
	logger.Info("Registered contract %s at %s (block %d)", name, address.Hex(), blockNum)
	return c
}

// GetContract 按地址获取合约
func (m *ContractManager) GetContract(address common.Address) (*Contract, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contracts[address]
	return c, ok
}

// GetAllContracts 获取所有合约
func (m *ContractManager) GetAllContracts() map[common.Address]*Contract {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[common.Address]*Contract, len(m.contracts))
	for addr, c := range m.contracts {
		result[addr] = c
	}
	return result
}

// Len 已注册合约数量
func (m *ContractManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contracts)
}
