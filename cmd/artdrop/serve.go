package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/chain"
	"github.com/blues/artdrop/internal/handler"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/logic"
	"github.com/blues/artdrop/internal/metrics"
	"github.com/blues/artdrop/internal/monitor"
	"github.com/blues/artdrop/internal/repository"
	"github.com/blues/artdrop/internal/router"
	"github.com/blues/artdrop/internal/scheduler"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var noIndex bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger node, HTTP API and event indexer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noIndex, "no-index", false, "serve the ledger without a database or indexer")
}

func serve(ctx context.Context) error {
	m := metrics.New()

	node, err := newNode(m)
	if err != nil {
		return err
	}

	var (
		db       *gorm.DB
		monitors []handler.StatusProvider
	)
	if !noIndex {
		db, err = repository.Init(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		var chainManager *chain.Manager
		if cfg.Chain.Enabled {
			chainManager, err = chain.NewManager(cfg.Chain)
			if err != nil {
				return fmt.Errorf("failed to initialize chain: %w", err)
			}
			defer chainManager.Close()
		}

		stopIndexer, providers, err := startIndexer(node, chainManager, db, m)
		if err != nil {
			return err
		}
		defer stopIndexer()
		monitors = providers
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Setup(router.Deps{
		Node:     node,
		DB:       db,
		Metrics:  m,
		Config:   cfg,
		Monitors: monitors,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newNode 创建账本节点, 每个区块更新区块高度指标
func newNode(m *metrics.Metrics) (*artdrop.Node, error) {
	if !common.IsHexAddress(cfg.Ledger.Owner) {
		return nil, fmt.Errorf("invalid ledger owner %q", cfg.Ledger.Owner)
	}

	l := ledger.New(ledger.SystemClock)
	if m != nil {
		l.OnCommit(func(r *ledger.Receipt) {
			m.BlockNumber.Set(float64(r.BlockNumber))
		})
	}
	return artdrop.NewNode(l, common.HexToAddress(cfg.Ledger.Owner))
}

// startIndexer 为每个日志来源创建监控器并注册定时任务, 返回的函数停止任务并释放监控器
func startIndexer(node *artdrop.Node, chainManager *chain.Manager, db *gorm.DB, m *metrics.Metrics) (func(), []handler.StatusProvider, error) {
	batchSize := uint64(cfg.Task.BatchSize)
	syncInterval := time.Duration(cfg.Task.Interval) * time.Second
	statusInterval := time.Duration(cfg.Task.StatusInterval) * time.Second

	monitors := []*monitor.EventMonitor{monitor.NewLedgerMonitor(node, db, m, batchSize, cfg.Task.Workers)}
	readers := map[string]scheduler.StatusReader{node.Source(): node}
	if chainManager != nil {
		monitors = append(monitors, monitor.NewChainMonitor(chainManager, db, m, batchSize, cfg.Task.Workers))
		readers[chainManager.Source()] = chainManager
	}

	tasks, err := scheduler.NewManager()
	if err != nil {
		return nil, nil, err
	}

	providers := make([]handler.StatusProvider, 0, len(monitors))
	for _, mon := range monitors {
		if err := tasks.Register(scheduler.NewEventSyncJob(mon, syncInterval)); err != nil {
			return nil, nil, err
		}
		providers = append(providers, mon)
	}

	campaignLogic := logic.NewCampaignLogic(db)
	if err := tasks.Register(scheduler.NewCampaignStatusJob(campaignLogic, readers, statusInterval, m)); err != nil {
		return nil, nil, err
	}
	if cfg.Task.AutoRefund {
		if err := tasks.Register(scheduler.NewCampaignRefundJob(node, campaignLogic, statusInterval)); err != nil {
			return nil, nil, err
		}
	}

	tasks.Start()
	stop := func() {
		tasks.Stop()
		for _, mon := range monitors {
			mon.Close()
		}
	}
	return stop, providers, nil
}
