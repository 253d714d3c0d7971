package task

import (
	"github.com/haierkeys/knowledge-graph-service/internal/app"
	"github.com/haierkeys/knowledge-graph-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks(a *app.App) error {
	cfg := a.Config()

	// 悬空边审计任务
	if err := m.scheduler.AddTask(NewLinkAuditTask(a, cfg.Graph.LinkAuditSchedule)); err != nil {
		m.logger.Warn("failed to register link audit task", zap.Error(err))
		return err
	}

	// 孤儿坐标清理任务
	if err := m.scheduler.AddTask(NewPositionSweepTask(a, cfg.Graph.PositionSweepSchedule)); err != nil {
		m.logger.Warn("failed to register position sweep task", zap.Error(err))
		return err
	}

	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
