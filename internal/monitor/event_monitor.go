package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blues/artdrop/internal/chain"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/contract/processor"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/metrics"
	"github.com/blues/artdrop/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultBatchSize = 500
	defaultWorkers   = 8
)

// Options 事件监控器配置
type Options struct {
	Source     string                      // 来源标识, 写入所有投影记录
	Logs       chain.LogSource             // 日志来源
	Contracts  *contract.ContractManager   // 已知合约
	Registry   common.Address              // ArtdropV2 地址
	StartBlock uint64                      // ArtdropV2 部署区块号
	BatchSize  uint64                      // 每批处理的区块数
	Workers    int                         // 并发处理活动合约日志的协程数
	DB         *gorm.DB                    // 投影库
	Processors *processor.ProcessorManager // 事件处理器
	Metrics    *metrics.Metrics            // 可为 nil
}

// EventMonitor 区块链事件监控器, 每个日志来源一个实例
type EventMonitor struct {
	opts  Options
	block *chain.Block
	pool  *ants.Pool

	mu        sync.Mutex // 串行化同步过程并保护以下字段
	loaded    bool
	nextBlock uint64
	lastSync  time.Time
	lastErr   error
}

// NewEventMonitor 创建事件监控器
func NewEventMonitor(opts Options) *EventMonitor {
	if opts.BatchSize == 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &EventMonitor{
		opts:  opts,
		block: chain.NewBlock(opts.Logs),
	}
}

// Source 来源标识
func (m *EventMonitor) Source() string {
	return m.opts.Source
}

// Close 释放协程池
func (m *EventMonitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		m.pool.Release()
		m.pool = nil
	}
}

// Sync 将投影同步到来源的最新区块, 返回首次写入的事件数
func (m *EventMonitor) Sync(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	started := time.Now()
	processed, err := m.sync(ctx)
	m.lastSync = time.Now()
	m.lastErr = err

	if m.opts.Metrics != nil {
		m.opts.Metrics.SyncDuration.WithLabelValues(m.opts.Source).Observe(time.Since(started).Seconds())
		if err != nil {
			m.opts.Metrics.SyncErrors.WithLabelValues(m.opts.Source).Inc()
		}
	}
	if err != nil {
		logger.Error("Sync of %s failed: %v", m.opts.Source, err)
	}
	return processed, err
}

func (m *EventMonitor) sync(ctx context.Context) (int, error) {
	if !m.loaded {
		if err := m.load(); err != nil {
			return 0, err
		}
		m.loaded = true
	}
	if m.pool == nil {
		pool, err := ants.NewPool(m.opts.Workers)
		if err != nil {
			return 0, fmt.Errorf("failed to create pool of %d workers: %w", m.opts.Workers, err)
		}
		m.pool = pool
	}

	currentBlock, err := m.block.GetCurrentBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current block number: %w", err)
	}
	if currentBlock < m.nextBlock {
		return 0, nil
	}

	total := 0
	for from := m.nextBlock; from <= currentBlock; from += m.opts.BatchSize {
		to := min(from+m.opts.BatchSize-1, currentBlock)

		logger.Debug("Processing %s blocks %d to %d", m.opts.Source, from, to)
		processed, err := m.processBatchBlocks(ctx, from, to)
		total += processed
		if err != nil {
			return total, fmt.Errorf("blocks %d-%d: %w", from, to, err)
		}

		// 整批成功后才前移游标, 失败的批次在重启后整体重放
		if err := m.saveCursor(to + 1); err != nil {
			return total, err
		}
		m.nextBlock = to + 1
		if m.opts.Metrics != nil {
			m.opts.Metrics.SyncedBlock.WithLabelValues(m.opts.Source).Set(float64(to))
		}
	}

	if total > 0 {
		logger.Info("Indexed %d events from %s up to block %d", total, m.opts.Source, currentBlock)
	}
	return total, nil
}

// load 确定起始区块并从投影中恢复已知活动合约
func (m *EventMonitor) load() error {
	m.opts.Contracts.Register(contract.NameArtdrop, contract.ArtdropV2, m.opts.Registry, m.opts.StartBlock)

	var cursor model.SyncCursorModel
	err := m.opts.DB.Where("source = ?", m.opts.Source).Limit(1).Find(&cursor).Error
	if err != nil {
		return fmt.Errorf("failed to load sync cursor: %w", err)
	}
	m.nextBlock = max(m.opts.StartBlock, uint64(cursor.NextBlock))

	var campaigns []model.CampaignModel
	if err := m.opts.DB.Where("source = ?", m.opts.Source).Find(&campaigns).Error; err != nil {
		return fmt.Errorf("failed to load campaigns: %w", err)
	}
	for _, c := range campaigns {
		m.opts.Contracts.Register(contract.NameCampaign, contract.Campaign,
			common.HexToAddress(c.ContractAddress), uint64(c.BlockNum))
	}

	logger.Info("Monitor for %s starts at block %d (config: %d, cursor: %d, campaigns: %d)",
		m.opts.Source, m.nextBlock, m.opts.StartBlock, cursor.NextBlock, len(campaigns))
	return nil
}

// saveCursor 持久化下一个待处理的区块号
func (m *EventMonitor) saveCursor(next uint64) error {
	cursor := model.SyncCursorModel{Source: m.opts.Source, NextBlock: int64(next)}
	if err := m.opts.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{"next_block", "updated_at"}),
	}).Create(&cursor).Error; err != nil {
		return fmt.Errorf("failed to save sync cursor: %w", err)
	}
	return nil
}

// processBatchBlocks 先顺序处理工厂事件以注册新活动, 再按活动合约并发处理其余事件
func (m *EventMonitor) processBatchBlocks(ctx context.Context, fromBlock, toBlock uint64) (int, error) {
	logs, err := m.block.GetBatchBlockLogs(ctx, nil, contract.Topics(), fromBlock, toBlock)
	if err != nil {
		return 0, fmt.Errorf("error getting logs: %w", err)
	}
	if len(logs) == 0 {
		return 0, nil
	}

	var registryLogs []types.Log
	campaignLogs := make([]types.Log, 0, len(logs))
	for _, l := range logs {
		if l.Address == m.opts.Registry {
			registryLogs = append(registryLogs, l)
		} else {
			campaignLogs = append(campaignLogs, l)
		}
	}

	registry, _ := m.opts.Contracts.GetContract(m.opts.Registry)
	total, err := m.processContractLogs(registry, registryLogs)
	if err != nil {
		return total, err
	}

	// 按合约地址分组日志
	logsByContract := m.groupLogsByContract(campaignLogs)
	if len(logsByContract) == 0 {
		return total, nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		counts int
	)
	for c, contractLogs := range logsByContract {
		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()
			n, err := m.processContractLogs(c, contractLogs)
			mu.Lock()
			defer mu.Unlock()
			counts += n
			if err != nil {
				errs = append(errs, err)
			}
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("failed to submit task to pool: %w", err))
			mu.Unlock()
		}
	}
	wg.Wait()

	return total + counts, errors.Join(errs...)
}

// processContractLogs 按顺序处理一个合约的日志, 遇到错误即停止以保持顺序
func (m *EventMonitor) processContractLogs(c *contract.Contract, logs []types.Log) (int, error) {
	processed := 0
	for _, l := range logs {
		eventData, err := c.ParseEvent(l)
		if err != nil {
			return processed, fmt.Errorf("error parsing event for contract %s: %w", c.GetName(), err)
		}

		eventDataJSON, err := json.Marshal(eventData)
		if err != nil {
			return processed, fmt.Errorf("failed to marshal event data: %w", err)
		}

		event := &model.EventModel{
			Source:          m.opts.Source,
			ContractAddress: l.Address.Hex(),
			ContractName:    c.GetName(),
			EventType:       eventData["eventName"].(string),
			TxHash:          l.TxHash.Hex(),
			BlockNum:        int64(l.BlockNumber),
			LogIndex:        int64(l.Index),
			Data:            string(eventDataJSON),
		}

		fresh, err := m.opts.Processors.ProcessEvent(event, eventData)
		if err != nil {
			return processed, err
		}

		// 新活动合约在后续批次中才会产生事件, 重放时同样需要注册
		if event.EventType == contract.EventCampaignCreated {
			if address, ok := eventData["campaignAddress"].(common.Address); ok {
				m.opts.Contracts.Register(contract.NameCampaign, contract.Campaign, address, l.BlockNumber)
			}
		}

		if fresh {
			processed++
			if m.opts.Metrics != nil {
				m.opts.Metrics.EventsIndexed.WithLabelValues(m.opts.Source, event.EventType).Inc()
			}
			logger.Debug("Processed %s for contract %s at block %d", event.EventType, c.GetName(), l.BlockNumber)
		}
	}
	return processed, nil
}

// groupLogsByContract 按已注册的合约分组日志, 未知地址的日志忽略
func (m *EventMonitor) groupLogsByContract(logs []types.Log) map[*contract.Contract][]types.Log {
	logsByContract := make(map[*contract.Contract][]types.Log)
	for _, l := range logs {
		c, ok := m.opts.Contracts.GetContract(l.Address)
		if !ok {
			logger.Debug("Skipping log from unknown contract %s", l.Address.Hex())
			continue
		}
		logsByContract[c] = append(logsByContract[c], l)
	}
	return logsByContract
}

// GetStatus 获取监控状态
func (m *EventMonitor) GetStatus() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := map[string]interface{}{
		"source":         m.opts.Source,
		"next_block":     m.nextBlock,
		"contract_count": m.opts.Contracts.Len(),
		"workers":        m.opts.Workers,
		"last_sync":      m.lastSync,
	}
	if m.lastErr != nil {
		status["last_error"] = m.lastErr.Error()
	}
	return status
}
