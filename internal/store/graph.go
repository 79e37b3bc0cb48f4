package store

import (
	"context"
	"fmt"

	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/model"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

// GraphDB 图谱库实现（Game/Team/Tournament节点 + COMPETES_IN关系）
type GraphDB struct {
	driver neo4j.DriverWithContext
	logger *logrus.Logger
}

// NewGraphDB 建立Neo4j连接并校验连通性（启动期失败应由调用方Fatal）
func NewGraphDB(ctx context.Context, cfg *config.Neo4jConfig, logger *logrus.Logger) (*GraphDB, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("创建Neo4j驱动失败: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("Neo4j连通性校验失败: %w", err)
	}
	return &GraphDB{driver: driver, logger: logger}, nil
}

// Close 释放驱动（进程退出时调用）
func (g *GraphDB) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func (g *GraphDB) Ping(ctx context.Context) error {
	return g.driver.VerifyConnectivity(ctx)
}

// run 短会话执行一条写Cypher（每条记录独立会话，与文档写互不影响）
func (g *GraphDB) run(ctx context.Context, cypher string, params map[string]any) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, params)
	})
	return err
}

// MergeGameNode 按gameId幂等合并游戏节点，SET覆盖标量属性
func (g *GraphDB) MergeGameNode(ctx context.Context, game *model.Game) error {
	err := g.run(ctx, `
		MERGE (g:Game {gameId: $gameId})
		SET g.title = $title,
		    g.genres = $genres,
		    g.developer = $developer
	`, map[string]any{
		"gameId":    game.ID,
		"title":     game.Title,
		"genres":    game.Genres,
		"developer": game.Developer,
	})
	if err != nil {
		return fmt.Errorf("合并Game节点失败: %w", err)
	}
	return nil
}

// MergeTournament 按tournamentId幂等合并锦标赛节点
func (g *GraphDB) MergeTournament(ctx context.Context, t *model.Tournament) error {
	err := g.run(ctx, `
		MERGE (t:Tournament {tournamentId: $tid})
		SET t.name = $name,
		    t.gameTitle = $game
	`, map[string]any{
		"tid":  t.ID,
		"name": t.Name,
		"game": t.GameTitle,
	})
	if err != nil {
		return fmt.Errorf("合并Tournament节点失败: %w", err)
	}
	return nil
}

// MergeTeamCompetesIn 合并战队节点；tournamentID非空时追加COMPETES_IN边
// 边的MATCH端点找不到时Cypher自然零行，不报错——调和器层面按"跳过"处理
func (g *GraphDB) MergeTeamCompetesIn(ctx context.Context, team *model.Team, tournamentID string) error {
	if tournamentID == "" {
		err := g.run(ctx, `
			MERGE (t:Team {teamId: $teamId})
			SET t.name = $name, t.gameTitle = $gameTitle
		`, map[string]any{
			"teamId":    team.ID,
			"name":      team.Name,
			"gameTitle": team.GameTitle,
		})
		if err != nil {
			return fmt.Errorf("合并Team节点失败: %w", err)
		}
		return nil
	}

	err := g.run(ctx, `
		MERGE (t:Team {teamId: $teamId})
		SET t.name = $name, t.gameTitle = $gameTitle
		WITH t
		MATCH (tour:Tournament {tournamentId: $tourId})
		MERGE (t)-[:COMPETES_IN]->(tour)
	`, map[string]any{
		"teamId":    team.ID,
		"name":      team.Name,
		"gameTitle": team.GameTitle,
		"tourId":    tournamentID,
	})
	if err != nil {
		return fmt.Errorf("合并Team及COMPETES_IN关系失败: %w", err)
	}
	return nil
}

var _ interfaces.GraphStore = (*GraphDB)(nil)
