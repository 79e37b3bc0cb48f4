package service

import (
	"context"
	"errors"
	"fmt"

	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/connector"
	"GameSenseIngest/internal/fallback"
	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/model"
	"GameSenseIngest/internal/reconcile"

	"github.com/sirupsen/logrus"
)

// IngestService 摄取编排器：对每个任务串起 连接器抓取 → 逐条调和 → 兜底检查
// 两个库连接在进程启动时注入，随进程存活并跨任务复用
type IngestService struct {
	docs        interfaces.DocumentStore
	graph       interfaces.GraphStore
	reconciler  *reconcile.Reconciler
	synthesizer *fallback.Synthesizer
	connectors  map[string]interfaces.SourceConnector
	cfg         *config.Config
	logger      *logrus.Logger
}

func NewIngestService(docs interfaces.DocumentStore, graph interfaces.GraphStore, cfg *config.Config, logger *logrus.Logger) *IngestService {
	// 连接器在此构建一次并跨任务复用（IGDB的令牌缓存依赖同一实例跨调度周期存活）
	connectors := make(map[string]interfaces.SourceConnector)
	for name := range cfg.Sources {
		factory, ok := connector.GetFactory(name)
		if !ok {
			continue
		}
		srcCfg := cfg.Sources[name]
		connectors[name] = factory(&srcCfg, docs, logger)
	}

	return &IngestService{
		docs:        docs,
		graph:       graph,
		reconciler:  reconcile.NewReconciler(docs, graph, logger),
		synthesizer: fallback.NewSynthesizer(docs, &cfg.Fallback, logger),
		connectors:  connectors,
		cfg:         cfg,
		logger:      logger,
	}
}

// RunSource 执行单个数据源的摄取任务
// 缺凭证降级为no-op告警（任务可独立跳过）；抓取失败跳过本次调用，等下个调度周期
func (s *IngestService) RunSource(ctx context.Context, name string) error {
	srcCfg, ok := s.cfg.Sources[name]
	if !ok {
		return fmt.Errorf("未配置的数据源: %s", name)
	}
	conn, ok := s.connectors[name]
	if !ok {
		return fmt.Errorf("未注册的数据源: %s", name)
	}

	if !srcCfg.HasCredentials(name) {
		s.logger.Warnf("数据源%s凭证缺失，本任务降级为no-op", name)
		return nil
	}

	batch, err := conn.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("数据源%s抓取失败: %w", name, err)
	}
	if batch.Size() == 0 {
		s.logger.Warnf("数据源%s未抓取到记录", name)
		return nil
	}

	stats := s.reconcileBatch(ctx, batch)
	s.logger.Infof("数据源%s同步完成: 共%d条，成功%d，文档降级%d，图谱降级%d，跳过%d",
		name, batch.Size(), stats.ok, stats.docFailed, stats.graphFailed, stats.skipped)
	return nil
}

type batchStats struct {
	ok          int // 双库均成功
	docFailed   int // 文档写入失败
	graphFailed int // 仅图谱投影失败
	skipped     int // 坏记录跳过
}

// reconcileBatch 逐条调和，单条失败只计数不中断（批次隔离）
func (s *IngestService) reconcileBatch(ctx context.Context, batch *model.Batch) batchStats {
	var stats batchStats
	tally := func(res reconcile.Result) {
		switch {
		case errors.Is(res.Err, reconcile.ErrEmptyID):
			stats.skipped++
		case !res.DocOK:
			stats.docFailed++
		case !res.GraphOK:
			stats.graphFailed++
		default:
			stats.ok++
		}
	}

	for _, g := range batch.Games {
		tally(s.reconciler.ReconcileGame(ctx, g))
	}
	for _, m := range batch.Matches {
		tally(s.reconciler.ReconcileMatch(ctx, m))
	}
	for _, r := range batch.Reviews {
		tally(s.reconciler.ReconcileReview(ctx, r))
	}
	return stats
}

// RunFallback 兜底检查：评论下限 + 已结束比赛下限（两项独立）
func (s *IngestService) RunFallback(ctx context.Context) error {
	reviews, err := s.synthesizer.EnsureReviewFloor(ctx)
	if err != nil {
		s.logger.WithError(err).Error("评论兜底检查失败")
	}
	matches, merr := s.synthesizer.EnsureFinishedMatches(ctx)
	if merr != nil {
		s.logger.WithError(merr).Error("比赛兜底检查失败")
		if err == nil {
			err = merr
		}
	}
	if reviews > 0 || matches > 0 {
		s.logger.Infof("兜底注入完成: 评论%d条，比赛%d场", reviews, matches)
	}
	return err
}

// RunAll 完整一轮：目录 → 比赛 → 评论，收尾做兜底检查
// 任务间串行且互不拖累（单任务失败只记日志）
func (s *IngestService) RunAll(ctx context.Context) {
	for _, name := range []string{"igdb", "pandascore", "steam"} {
		if _, ok := s.cfg.Sources[name]; !ok {
			continue
		}
		if err := s.RunSource(ctx, name); err != nil {
			s.logger.WithError(err).Errorf("数据源%s任务失败", name)
		}
	}
	if err := s.RunFallback(ctx); err != nil {
		s.logger.WithError(err).Error("兜底检查失败")
	}
}
