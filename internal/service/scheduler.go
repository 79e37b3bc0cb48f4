package service

import (
	"context"
	"time"

	"GameSenseIngest/internal/config"

	"github.com/sirupsen/logrus"
)

// Scheduler 固定间隔调度器：单协程轮询到期任务，任务阻塞执行完再看下一个
// 不做并发扇出，不支持任务中途取消（任务要么跑完要么随进程退出）
type Scheduler struct {
	ingest *IngestService
	cfg    *config.SchedulerConfig
	logger *logrus.Logger
}

func NewScheduler(ingest *IngestService, cfg *config.SchedulerConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{ingest: ingest, cfg: cfg, logger: logger}
}

// Run 阻塞运行：启动先跑完整一轮，之后按各自间隔触发
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("调度器启动，先执行一轮完整摄取")
	s.ingest.RunAll(ctx)

	poll := s.cfg.PollInterval
	if poll <= 0 {
		poll = time.Minute
	}

	type task struct {
		name     string
		interval time.Duration
		lastRun  time.Time
	}
	now := time.Now()
	tasks := []*task{
		{name: "igdb", interval: s.cfg.CatalogInterval, lastRun: now},
		{name: "pandascore", interval: s.cfg.MatchInterval, lastRun: now},
		{name: "steam", interval: s.cfg.ReviewInterval, lastRun: now},
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("调度器收到退出信号")
			return
		case <-ticker.C:
		}

		ran := false
		for _, t := range tasks {
			if t.interval <= 0 || time.Since(t.lastRun) < t.interval {
				continue
			}
			if err := s.ingest.RunSource(ctx, t.name); err != nil {
				s.logger.WithError(err).Errorf("定时任务%s失败，等待下个周期", t.name)
			}
			t.lastRun = time.Now()
			ran = true
		}

		// 本轮跑过任务才做兜底检查（没有新数据就没必要反复扫描）
		if ran {
			if err := s.ingest.RunFallback(ctx); err != nil {
				s.logger.WithError(err).Error("定时兜底检查失败")
			}
		}
	}
}
