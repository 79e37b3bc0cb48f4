package reconcile

import (
	"context"
	"errors"
	"time"

	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/model"
	"GameSenseIngest/internal/normalize"

	"github.com/sirupsen/logrus"
)

// ErrEmptyID 记录缺主键，按坏记录跳过
var ErrEmptyID = errors.New("记录缺少ID")

// Result 单条记录的调和结果：双库写入各自独立汇报
type Result struct {
	DocOK   bool  // 文档库写入成功
	GraphOK bool  // 图谱投影成功（无图谱事实的记录视为成功）
	Err     error // 首个失败（文档失败优先）
}

// OK 两边均成功
func (r Result) OK() bool {
	return r.DocOK && r.GraphOK
}

// Reconciler 双库调和器：把一条归一化记录幂等地落到文档库，并独立投影图谱事实
// 两库最终一致而非事务一致：图谱失败绝不回滚已成功的文档写入
type Reconciler struct {
	docs   interfaces.DocumentStore
	graph  interfaces.GraphStore
	logger *logrus.Logger
	now    func() time.Time // 测试注入
}

func NewReconciler(docs interfaces.DocumentStore, graph interfaces.GraphStore, logger *logrus.Logger) *Reconciler {
	return &Reconciler{docs: docs, graph: graph, logger: logger, now: time.Now}
}

// ReconcileGame 游戏入库：文档upsert（createdAt仅首插）+ Game节点合并
func (r *Reconciler) ReconcileGame(ctx context.Context, g *model.Game) Result {
	if g == nil || g.ID == "" {
		return Result{Err: ErrEmptyID}
	}

	// 时间戳统一在调和层盖：updatedAt每次写、createdAt只在首插生效（$setOnInsert）
	now := r.now()
	g.UpdatedAt = now
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}

	var res Result
	if _, err := r.docs.UpsertGame(ctx, g); err != nil {
		r.logger.WithError(err).WithField("gameId", g.ID).Error("游戏文档写入失败")
		r.deadLetter(ctx, "upsert_game", g.ID, err)
		res.Err = err
	} else {
		res.DocOK = true
	}

	// 图谱投影独立于文档结果执行（文档失败时图谱仍照常尝试，反之亦然）
	if err := r.graph.MergeGameNode(ctx, g); err != nil {
		r.logger.WithError(err).WithField("gameId", g.ID).Warn("游戏图谱投影失败（文档写入不受影响）")
		r.deadLetter(ctx, "merge_game_node", g.ID, err)
		if res.Err == nil {
			res.Err = err
		}
	} else {
		res.GraphOK = true
	}

	return res
}

// ReconcileMatch 比赛入库：文档upsert + 锦标赛/战队节点与COMPETES_IN边投影
func (r *Reconciler) ReconcileMatch(ctx context.Context, m *model.Match) Result {
	if m == nil || m.ID == "" {
		return Result{Err: ErrEmptyID}
	}

	now := r.now()
	m.UpdatedAt = now
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}

	var res Result
	if _, err := r.docs.UpsertMatch(ctx, m); err != nil {
		r.logger.WithError(err).WithField("matchId", m.ID).Error("比赛文档写入失败")
		r.deadLetter(ctx, "upsert_match", m.ID, err)
		res.Err = err
	} else {
		res.DocOK = true
	}

	if err := r.projectMatchGraph(ctx, m); err != nil {
		r.logger.WithError(err).WithField("matchId", m.ID).Warn("比赛图谱投影失败（文档写入不受影响）")
		r.deadLetter(ctx, "project_match_graph", m.ID, err)
		if res.Err == nil {
			res.Err = err
		}
	} else {
		res.GraphOK = true
	}

	return res
}

// projectMatchGraph 投影比赛的图谱事实：
// 1. 锦标赛节点（本记录带锦标赛ID时）
// 2. 两个战队节点；锦标赛端点可解析时顺带COMPETES_IN边，否则跳过边（不跨记录找补）
func (r *Reconciler) projectMatchGraph(ctx context.Context, m *model.Match) error {
	if m.TournamentID != "" {
		tournament := &model.Tournament{
			ID:        m.TournamentID,
			Name:      composedOrFallback(m),
			GameTitle: m.GameTitle,
		}
		if err := r.graph.MergeTournament(ctx, tournament); err != nil {
			return err
		}
	}

	for _, team := range []model.Team{
		{ID: m.TeamAID, Name: m.TeamAName, GameTitle: m.GameTitle},
		{ID: m.TeamBID, Name: m.TeamBName, GameTitle: m.GameTitle},
	} {
		if team.ID == "" {
			// 缺队占位（TBD）不落节点
			continue
		}
		t := team
		if err := r.graph.MergeTeamCompetesIn(ctx, &t, m.TournamentID); err != nil {
			return err
		}
	}
	return nil
}

// composedOrFallback 优先用league/series/stage拼出的展示名，三段全空退回文档里的名称
func composedOrFallback(m *model.Match) string {
	if name := normalize.TournamentName(m.LeagueName, m.SeriesName, m.StageName); name != "" {
		return name
	}
	return m.TournamentName
}

// ReconcileReview 评论入库：仅文档库（评论无图谱事实），首插时游戏评论数+1
func (r *Reconciler) ReconcileReview(ctx context.Context, rev *model.Review) Result {
	if rev == nil || rev.ID == "" {
		return Result{Err: ErrEmptyID}
	}
	if rev.GameID == "" {
		return Result{Err: ErrEmptyID}
	}

	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = r.now()
	}

	inserted, err := r.docs.UpsertReview(ctx, rev)
	if err != nil {
		r.logger.WithError(err).WithField("reviewId", rev.ID).Error("评论写入失败")
		r.deadLetter(ctx, "upsert_review", rev.ID, err)
		return Result{Err: err}
	}
	if inserted {
		if err := r.docs.IncGameReviewCount(ctx, rev.GameID, 1); err != nil {
			// 计数失败不影响评论本体，记死信待对账
			r.logger.WithError(err).WithField("gameId", rev.GameID).Warn("评论计数更新失败")
			r.deadLetter(ctx, "inc_review_count", rev.GameID, err)
		}
	}
	return Result{DocOK: true, GraphOK: true}
}

// deadLetter 写死信。死信自身失败只剩日志兜底，不再传播
func (r *Reconciler) deadLetter(ctx context.Context, op, resourceID string, cause error) {
	entry := &model.DeadLetterEntry{
		Operation:  op,
		ResourceID: resourceID,
		Error:      cause.Error(),
		FailedAt:   r.now(),
	}
	if err := r.docs.DeadLetter(ctx, entry); err != nil {
		r.logger.WithError(err).Errorf("死信写入失败: op=%s, resource=%s", op, resourceID)
	}
}
