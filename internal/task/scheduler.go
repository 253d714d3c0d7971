// Package task 提供后台维护任务的调度
package task

import (
	"context"
	"time"

	"github.com/haierkeys/knowledge-graph-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() string              // cron 表达式（秒级，六段）
	IsStartupRun() bool            // 是否立即执行一次
}

// cronParser 秒级六段 cron 表达式解析器
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
	}
}

// AddTask 添加任务，cron 表达式非法时返回错误
func (s *Scheduler) AddTask(task Task) error {
	if _, err := cronParser.Parse(task.Schedule()); err != nil {
		return err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting ", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

// runOnce 执行一次任务并吞掉 panic
func (s *Scheduler) runOnce(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task run panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	s.logger.Info("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}

// startTask 启动单个任务
func (s *Scheduler) startTask(task Task) {

	// AddTask 已校验过表达式
	schedule, err := cronParser.Parse(task.Schedule())
	if err != nil {
		s.logger.Error("task schedule invalid",
			zap.String("name", task.Name()),
			zap.String("schedule", task.Schedule()),
			zap.Error(err))
		return
	}

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		// 如果任务需要立即执行
		if task.IsStartupRun() {
			go s.runOnce(task, "startupRun")
		}

		// 按 cron 表达式执行
		for {
			next := schedule.Next(time.Now())
			timer := time.NewTimer(time.Until(next))

			select {
			case <-timer.C:
				s.runOnce(task, "cronRun")
			case <-closeSignal:
				timer.Stop()
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}
