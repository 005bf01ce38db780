package chain

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/config"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var supportedTypes = []string{"ethereum", "polygon", "bsc", "arbitrum", "optimism"}

// Manager 远程链管理器, 负责 RPC 连接与已部署 ArtdropV2 的只读调用
type Manager struct {
	mu        sync.RWMutex
	client    *ethclient.Client
	config    config.ChainConfig
	contracts *contract.ContractManager
	registry  *contract.Contract
}

// NewManager 连接远程链并注册 ArtdropV2 合约
func NewManager(cfg config.ChainConfig) (*Manager, error) {
	if !common.IsHexAddress(cfg.Registry) {
		return nil, fmt.Errorf("invalid registry address %q", cfg.Registry)
	}

	manager := &Manager{config: cfg}

	// 初始化客户端
	if err := manager.initClient(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}

	manager.contracts = contract.NewContractManager(manager.client)
	manager.registry = manager.contracts.Register(contract.NameArtdrop, contract.ArtdropV2,
		common.HexToAddress(cfg.Registry), cfg.StartBlock)

	return manager, nil
}

// initClient 初始化客户端
func (m *Manager) initClient(cfg config.ChainConfig) error {
	logger.Info("Initializing chain client (type: %s, id: %d)", cfg.ChainType, cfg.ChainId)

	if cfg.RpcUrl == "" {
		return fmt.Errorf("no RPC URL configured")
	}
	if !slices.Contains(supportedTypes, cfg.ChainType) {
		return fmt.Errorf("unsupported chain type %s, supported types: %v", cfg.ChainType, supportedTypes)
	}

	logger.Info("Creating %s client connection (RPC: %s)", cfg.ChainType, cfg.RpcUrl)
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.ChainType, err)
	}

	// 测试连接并核对链ID
	chainID, err := client.ChainID(context.TODO())
	if err != nil {
		client.Close()
		return fmt.Errorf("client connection test failed (%s): %w", cfg.ChainType, err)
	}
	if cfg.ChainId != 0 && chainID.Int64() != cfg.ChainId {
		client.Close()
		return fmt.Errorf("chain id mismatch: configured %d, node reports %s", cfg.ChainId, chainID)
	}

	m.client = client
	logger.Info("Successfully created %s client", cfg.ChainType)
	return nil
}

// GetClient 获取客户端, 同时作为索引器的日志来源
func (m *Manager) GetClient() *ethclient.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Source 索引数据中的来源标识
func (m *Manager) Source() string {
	return fmt.Sprintf("chain-%d", m.config.ChainId)
}

// Contracts 已知合约, 活动合约由索引器动态注册
func (m *Manager) Contracts() *contract.ContractManager {
	return m.contracts
}

// Registry ArtdropV2 合约
func (m *Manager) Registry() *contract.Contract {
	return m.registry
}

// GetConfig 获取链配置
func (m *Manager) GetConfig() config.ChainConfig {
	return m.config
}

// CampaignDetails 调用活动合约 getCampaignDetails
func (m *Manager) CampaignDetails(ctx context.Context, address common.Address) (contract.CampaignDetails, error) {
	c, ok := m.contracts.GetContract(address)
	if !ok {
		c = m.contracts.Register(contract.NameCampaign, contract.Campaign, address, 0)
	}
	out, err := c.Call(ctx, "getCampaignDetails")
	if err != nil {
		return contract.CampaignDetails{}, err
	}
	return contract.DecodeCampaignDetails(out)
}

// CampaignStatus 按最新区块时间推导活动状态
func (m *Manager) CampaignStatus(ctx context.Context, address common.Address) (campaign.Status, error) {
	details, err := m.CampaignDetails(ctx, address)
	if err != nil {
		return "", err
	}
	header, err := m.GetClient().HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get latest header: %w", err)
	}
	return campaign.Details(details).Status(header.Time), nil
}

// GetHealthStatus 获取健康状态
func (m *Manager) GetHealthStatus() map[string]interface{} {
	health := map[string]interface{}{
		"chain_type":     m.config.ChainType,
		"chain_id":       m.config.ChainId,
		"registry":       m.registry.GetAddress().Hex(),
		"contract_count": m.contracts.Len(),
		"client_status":  "connected",
	}

	client := m.GetClient()
	if client == nil {
		health["client_status"] = "not_initialized"
		return health
	}
	if block, err := client.BlockNumber(context.TODO()); err != nil {
		health["client_status"] = "disconnected"
	} else {
		health["block_number"] = block
	}
	return health
}

// Close 关闭管理器
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.Close()
	}

	logger.Info("Chain manager closed")
	return nil
}
