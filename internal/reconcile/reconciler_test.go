package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"GameSenseIngest/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== 内存假文档库（复刻$set/$setOnInsert语义） ==========

type fakeDocs struct {
	games       map[string]model.Game
	matches     map[string]model.Match
	reviews     map[string]model.Review
	deadLetters []model.DeadLetterEntry
	failUpserts bool
	failInc     bool
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{
		games:   map[string]model.Game{},
		matches: map[string]model.Match{},
		reviews: map[string]model.Review{},
	}
}

func (f *fakeDocs) UpsertGame(_ context.Context, g *model.Game) (bool, error) {
	if f.failUpserts {
		return false, errors.New("文档库不可用")
	}
	old, ok := f.games[g.ID]
	cp := *g
	if ok {
		// $setOnInsert字段在更新时保持不变
		cp.CreatedAt = old.CreatedAt
		cp.TotalReviews = old.TotalReviews
	} else {
		cp.TotalReviews = 0
	}
	f.games[g.ID] = cp
	return !ok, nil
}

func (f *fakeDocs) UpsertMatch(_ context.Context, m *model.Match) (bool, error) {
	if f.failUpserts {
		return false, errors.New("文档库不可用")
	}
	old, ok := f.matches[m.ID]
	cp := *m
	if ok {
		cp.CreatedAt = old.CreatedAt
	}
	f.matches[m.ID] = cp
	return !ok, nil
}

func (f *fakeDocs) UpsertReview(_ context.Context, r *model.Review) (bool, error) {
	if f.failUpserts {
		return false, errors.New("文档库不可用")
	}
	old, ok := f.reviews[r.ID]
	cp := *r
	if ok {
		cp.CreatedAt = old.CreatedAt
	}
	f.reviews[r.ID] = cp
	return !ok, nil
}

func (f *fakeDocs) IncGameReviewCount(_ context.Context, gameID string, delta int) error {
	if f.failInc {
		return errors.New("计数失败")
	}
	if g, ok := f.games[gameID]; ok {
		g.TotalReviews += delta
		f.games[gameID] = g
	}
	return nil
}

func (f *fakeDocs) ListGames(_ context.Context, limit int64) ([]*model.Game, error) {
	var out []*model.Game
	for id := range f.games {
		g := f.games[id]
		out = append(out, &g)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDocs) ListGamesWithSteamApp(ctx context.Context, limit int64) ([]*model.Game, error) {
	all, _ := f.ListGames(ctx, 0)
	var out []*model.Game
	for _, g := range all {
		if g.SteamAppID != "" {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeDocs) CountReviewsByGame(_ context.Context, gameID string) (int64, error) {
	var n int64
	for _, r := range f.reviews {
		if r.GameID == gameID {
			n++
		}
	}
	return n, nil
}

func (f *fakeDocs) CountMatchesByStatus(_ context.Context, status model.MatchStatus) (int64, error) {
	var n int64
	for _, m := range f.matches {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeDocs) DeadLetter(_ context.Context, entry *model.DeadLetterEntry) error {
	f.deadLetters = append(f.deadLetters, *entry)
	return nil
}

func (f *fakeDocs) Ping(context.Context) error { return nil }

// ========== 内存假图谱库 ==========

type fakeGraph struct {
	gameNodes  map[string]string // gameId -> title
	teamNodes  map[string]string // teamId -> name
	tourNodes  map[string]string // tournamentId -> name
	edges      map[string]bool   // "teamId->tournamentId"
	failMerges bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		gameNodes: map[string]string{},
		teamNodes: map[string]string{},
		tourNodes: map[string]string{},
		edges:     map[string]bool{},
	}
}

func (f *fakeGraph) MergeGameNode(_ context.Context, g *model.Game) error {
	if f.failMerges {
		return errors.New("图谱库不可用")
	}
	f.gameNodes[g.ID] = g.Title
	return nil
}

func (f *fakeGraph) MergeTournament(_ context.Context, t *model.Tournament) error {
	if f.failMerges {
		return errors.New("图谱库不可用")
	}
	f.tourNodes[t.ID] = t.Name
	return nil
}

func (f *fakeGraph) MergeTeamCompetesIn(_ context.Context, team *model.Team, tournamentID string) error {
	if f.failMerges {
		return errors.New("图谱库不可用")
	}
	f.teamNodes[team.ID] = team.Name
	if tournamentID != "" {
		f.edges[fmt.Sprintf("%s->%s", team.ID, tournamentID)] = true
	}
	return nil
}

func (f *fakeGraph) Ping(context.Context) error { return nil }

// ========== 测试工具 ==========

func newTestReconciler(docs *fakeDocs, graph *fakeGraph) *Reconciler {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewReconciler(docs, graph, logger)
}

func sampleGame() *model.Game {
	score := 8.5
	release := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.Game{
		ID:          "42",
		Title:       "Foo",
		Description: "desc",
		Genres:      []string{"RPG"},
		Platforms:   []string{"PC"},
		Developer:   "FromSoftware",
		AvgScore:    &score,
		ReleaseDate: &release,
	}
}

func sampleMatch() *model.Match {
	return &model.Match{
		ID:             "9001",
		TournamentID:   "t1",
		TournamentName: "Playoffs",
		TeamAID:        "a1",
		TeamAName:      "Alpha",
		TeamBID:        "b1",
		TeamBName:      "Beta",
		Status:         model.StatusFinished,
		WinnerID:       "a1",
		GameTitle:      "CS2",
		LeagueName:     "ESL Pro League",
		SeriesName:     "Season 18",
		StageName:      "Playoffs",
	}
}

// ========== 用例 ==========

func TestReconcileGameIdempotent(t *testing.T) {
	docs := newFakeDocs()
	graph := newFakeGraph()
	r := newTestReconciler(docs, graph)

	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	r.now = func() time.Time { return t1 }
	res := r.ReconcileGame(context.Background(), sampleGame())
	require.True(t, res.OK())

	first := docs.games["42"]
	assert.Equal(t, t1, first.CreatedAt)
	assert.Equal(t, t1, first.UpdatedAt)
	assert.Equal(t, "Foo", first.Title)
	require.NotNil(t, first.AvgScore)
	assert.InDelta(t, 8.5, *first.AvgScore, 1e-9)

	// 同一条记录再调和一次：除updatedAt外终态不变，createdAt保持首插值
	r.now = func() time.Time { return t2 }
	res = r.ReconcileGame(context.Background(), sampleGame())
	require.True(t, res.OK())

	second := docs.games["42"]
	assert.Equal(t, t1, second.CreatedAt)
	assert.Equal(t, t2, second.UpdatedAt)
	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)
}

func TestGraphFailureDoesNotAffectDocumentState(t *testing.T) {
	// 图谱全挂的批次，文档库终态必须与图谱全好时一致
	run := func(failGraph bool) *fakeDocs {
		docs := newFakeDocs()
		graph := newFakeGraph()
		graph.failMerges = failGraph
		r := newTestReconciler(docs, graph)
		r.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

		r.ReconcileGame(context.Background(), sampleGame())
		r.ReconcileMatch(context.Background(), sampleMatch())
		return docs
	}

	healthy := run(false)
	degraded := run(true)
	assert.Equal(t, healthy.games, degraded.games)
	assert.Equal(t, healthy.matches, degraded.matches)

	// 降级路径要留痕：死信里有图谱失败记录
	docs := newFakeDocs()
	graph := newFakeGraph()
	graph.failMerges = true
	r := newTestReconciler(docs, graph)
	res := r.ReconcileGame(context.Background(), sampleGame())
	assert.True(t, res.DocOK)
	assert.False(t, res.GraphOK)
	require.NotEmpty(t, docs.deadLetters)
	assert.Equal(t, "merge_game_node", docs.deadLetters[0].Operation)
}

func TestDocFailureStillProjectsGraph(t *testing.T) {
	docs := newFakeDocs()
	docs.failUpserts = true
	graph := newFakeGraph()
	r := newTestReconciler(docs, graph)

	res := r.ReconcileGame(context.Background(), sampleGame())
	assert.False(t, res.DocOK)
	assert.True(t, res.GraphOK)
	assert.Equal(t, "Foo", graph.gameNodes["42"])
}

func TestReconcileMatchGraphProjection(t *testing.T) {
	docs := newFakeDocs()
	graph := newFakeGraph()
	r := newTestReconciler(docs, graph)

	res := r.ReconcileMatch(context.Background(), sampleMatch())
	require.True(t, res.OK())

	// 锦标赛展示名按league/series/stage拼接
	assert.Equal(t, "ESL Pro League - Season 18 - Playoffs", graph.tourNodes["t1"])
	assert.Equal(t, "Alpha", graph.teamNodes["a1"])
	assert.Equal(t, "Beta", graph.teamNodes["b1"])
	assert.True(t, graph.edges["a1->t1"])
	assert.True(t, graph.edges["b1->t1"])
}

func TestEdgeSkippedWhenTournamentMissing(t *testing.T) {
	docs := newFakeDocs()
	graph := newFakeGraph()
	r := newTestReconciler(docs, graph)

	m := sampleMatch()
	m.TournamentID = ""
	res := r.ReconcileMatch(context.Background(), m)
	require.True(t, res.OK())

	// 战队节点照常合并，但COMPETES_IN边跳过（不跨记录找补）
	assert.Equal(t, "Alpha", graph.teamNodes["a1"])
	assert.Empty(t, graph.tourNodes)
	assert.Empty(t, graph.edges)
}

func TestMissingOpponentNotMerged(t *testing.T) {
	docs := newFakeDocs()
	graph := newFakeGraph()
	r := newTestReconciler(docs, graph)

	m := sampleMatch()
	m.TeamBID = ""
	m.TeamBName = "TBD"
	res := r.ReconcileMatch(context.Background(), m)
	require.True(t, res.OK())

	// TBD占位队不落节点
	assert.Contains(t, graph.teamNodes, "a1")
	assert.NotContains(t, graph.teamNodes, "")
	assert.Len(t, graph.teamNodes, 1)
}

func TestReconcileReviewCountsOnlyFirstInsert(t *testing.T) {
	docs := newFakeDocs()
	graph := newFakeGraph()
	r := newTestReconciler(docs, graph)

	require.True(t, r.ReconcileGame(context.Background(), sampleGame()).OK())

	rev := &model.Review{
		ID:        "steam_r1",
		GameID:    "42",
		UserID:    "steam_u1",
		Content:   "great game",
		Rating:    10,
		Source:    model.SourceSteam,
		Timestamp: time.Now(),
	}
	require.True(t, r.ReconcileReview(context.Background(), rev).OK())
	assert.Equal(t, 1, docs.games["42"].TotalReviews)

	// 重复入库同一评论不再计数
	require.True(t, r.ReconcileReview(context.Background(), rev).OK())
	assert.Equal(t, 1, docs.games["42"].TotalReviews)
	assert.Len(t, docs.reviews, 1)
}

func TestMalformedRecordRejected(t *testing.T) {
	docs := newFakeDocs()
	graph := newFakeGraph()
	r := newTestReconciler(docs, graph)

	assert.ErrorIs(t, r.ReconcileGame(context.Background(), &model.Game{}).Err, ErrEmptyID)
	assert.ErrorIs(t, r.ReconcileMatch(context.Background(), nil).Err, ErrEmptyID)
	assert.ErrorIs(t, r.ReconcileReview(context.Background(), &model.Review{ID: "x"}).Err, ErrEmptyID)
	assert.Empty(t, docs.games)
	assert.Empty(t, graph.gameNodes)
}
