package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Syncer 事件同步器, 由 monitor.EventMonitor 实现
type Syncer interface {
	Source() string
	Sync(ctx context.Context) (int, error)
}

// EventSyncJob 事件同步任务, 每个日志来源一个
type EventSyncJob struct {
	syncer   Syncer
	interval time.Duration
}

// NewEventSyncJob 创建事件同步任务
func NewEventSyncJob(syncer Syncer, interval time.Duration) *EventSyncJob {
	return &EventSyncJob{syncer: syncer, interval: interval}
}

// GetName 获取任务名称
func (j *EventSyncJob) GetName() string {
	return "event_sync_" + j.syncer.Source()
}

// GetSchedule 获取调度配置
func (j *EventSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务, 错误已由同步器记录
func (j *EventSyncJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	_, _ = j.syncer.Sync(ctx)
}
