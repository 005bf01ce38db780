package monitor

import (
	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/chain"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/contract/processor"
	"github.com/blues/artdrop/internal/metrics"
	"gorm.io/gorm"
)

// NewLedgerMonitor 索引进程内账本, 工厂在创世区块之后部署
func NewLedgerMonitor(node *artdrop.Node, db *gorm.DB, m *metrics.Metrics, batchSize uint64, workers int) *EventMonitor {
	return NewEventMonitor(Options{
		Source:     node.Source(),
		Logs:       node.Ledger(),
		Contracts:  contract.NewContractManager(nil),
		Registry:   node.RegistryAddress(),
		BatchSize:  batchSize,
		Workers:    workers,
		DB:         db,
		Processors: processor.NewProcessorManager(db, node),
		Metrics:    m,
	})
}

// NewChainMonitor 索引远程链上已部署的 ArtdropV2
func NewChainMonitor(manager *chain.Manager, db *gorm.DB, m *metrics.Metrics, batchSize uint64, workers int) *EventMonitor {
	return NewEventMonitor(Options{
		Source:     manager.Source(),
		Logs:       manager.GetClient(),
		Contracts:  manager.Contracts(),
		Registry:   manager.Registry().GetAddress(),
		StartBlock: manager.GetConfig().StartBlock,
		BatchSize:  batchSize,
		Workers:    workers,
		DB:         db,
		Processors: processor.NewProcessorManager(db, manager),
		Metrics:    m,
	})
}
