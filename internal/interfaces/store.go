package interfaces

import (
	"context"

	"GameSenseIngest/internal/model"
)

// DocumentStore 文档库操作接口（MongoDB实现，测试用内存假库）
// Upsert系列均为原子upsert：全字段$set + createdAt仅$setOnInsert
type DocumentStore interface {
	UpsertGame(ctx context.Context, g *model.Game) (inserted bool, err error)
	UpsertMatch(ctx context.Context, m *model.Match) (inserted bool, err error)
	UpsertReview(ctx context.Context, r *model.Review) (inserted bool, err error)
	IncGameReviewCount(ctx context.Context, gameID string, delta int) error

	ListGames(ctx context.Context, limit int64) ([]*model.Game, error)
	ListGamesWithSteamApp(ctx context.Context, limit int64) ([]*model.Game, error)
	CountReviewsByGame(ctx context.Context, gameID string) (int64, error)
	CountMatchesByStatus(ctx context.Context, status model.MatchStatus) (int64, error)

	DeadLetter(ctx context.Context, entry *model.DeadLetterEntry) error
	Ping(ctx context.Context) error
}

// GraphStore 图谱库操作接口（Neo4j实现）
// Merge系列均为按ID幂等合并：MERGE节点后SET标量属性
type GraphStore interface {
	MergeGameNode(ctx context.Context, g *model.Game) error
	MergeTournament(ctx context.Context, t *model.Tournament) error
	// MergeTeamCompetesIn 合并战队节点；tournamentID非空时追加COMPETES_IN边
	MergeTeamCompetesIn(ctx context.Context, team *model.Team, tournamentID string) error
	Ping(ctx context.Context) error
}
