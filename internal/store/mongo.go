package store

import (
	"context"
	"fmt"
	"time"

	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/model"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore 文档库实现（games/matches/reviews/dead_letter_queue四个集合）
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	logger  *logrus.Logger
}

// NewMongoStore 建立MongoDB连接并Ping确认可用（启动期失败应由调用方Fatal）
func NewMongoStore(ctx context.Context, cfg *config.MongoConfig, logger *logrus.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("MongoDB Ping失败: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MongoStore{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Close 释放连接（进程退出时调用）
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// UpsertGame 原子upsert：全字段$set，createdAt与totalReviews仅首次插入时设置
// totalReviews由评论入库单独$inc，此处不能被$set覆盖
func (s *MongoStore) UpsertGame(ctx context.Context, g *model.Game) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	set := bson.M{
		"title":         g.Title,
		"description":   g.Description,
		"releaseDate":   g.ReleaseDate,
		"genres":        g.Genres,
		"platforms":     g.Platforms,
		"developer":     g.Developer,
		"avgScore":      g.AvgScore,
		"coverImageUrl": g.CoverImageURL,
		"steamAppId":    g.SteamAppID,
		"updatedAt":     g.UpdatedAt,
	}
	res, err := s.db.Collection("games").UpdateOne(ctx,
		bson.M{"_id": g.ID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"createdAt": g.CreatedAt, "totalReviews": 0},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("upsert game失败: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

// UpsertMatch 同UpsertGame：createdAt仅$setOnInsert（旧版全文档$set会重置创建时间，已废弃）
func (s *MongoStore) UpsertMatch(ctx context.Context, m *model.Match) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	set := bson.M{
		"tournamentId":   m.TournamentID,
		"tournamentName": m.TournamentName,
		"teamAId":        m.TeamAID,
		"teamAName":      m.TeamAName,
		"teamBId":        m.TeamBID,
		"teamBName":      m.TeamBName,
		"status":         m.Status,
		"winnerId":       m.WinnerID,
		"gameTitle":      m.GameTitle,
		"scheduledAt":    m.ScheduledAt,
		"startedAt":      m.StartedAt,
		"updatedAt":      m.UpdatedAt,
	}
	res, err := s.db.Collection("matches").UpdateOne(ctx,
		bson.M{"_id": m.ID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"createdAt": m.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("upsert match失败: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

// UpsertReview 评论按ID幂等入库，返回是否首次插入（调用方据此$inc游戏评论数）
func (s *MongoStore) UpsertReview(ctx context.Context, r *model.Review) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	set := bson.M{
		"gameId":         r.GameID,
		"userId":         r.UserID,
		"content":        r.Content,
		"rating":         r.Rating,
		"sentimentScore": r.SentimentScore,
		"source":         r.Source,
		"timestamp":      r.Timestamp,
		"upvotes":        r.Upvotes,
		"downvotes":      r.Downvotes,
	}
	res, err := s.db.Collection("reviews").UpdateOne(ctx,
		bson.M{"_id": r.ID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"createdAt": r.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("upsert review失败: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

// IncGameReviewCount 游戏评论计数器（只增）
func (s *MongoStore) IncGameReviewCount(ctx context.Context, gameID string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.Collection("games").UpdateOne(ctx,
		bson.M{"_id": gameID},
		bson.M{"$inc": bson.M{"totalReviews": delta}},
	)
	if err != nil {
		return fmt.Errorf("更新评论计数失败: %w", err)
	}
	return nil
}

// ListGames 按_id顺序取前limit个游戏（兜底扫描用，限制单轮工作量）
func (s *MongoStore) ListGames(ctx context.Context, limit int64) ([]*model.Game, error) {
	return s.findGames(ctx, bson.M{}, limit)
}

// ListGamesWithSteamApp 仅取带Steam商店ID的游戏（评论抓取的键）
func (s *MongoStore) ListGamesWithSteamApp(ctx context.Context, limit int64) ([]*model.Game, error) {
	return s.findGames(ctx, bson.M{"steamAppId": bson.M{"$ne": ""}}, limit)
}

func (s *MongoStore) findGames(ctx context.Context, filter bson.M, limit int64) ([]*model.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"_id": 1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := s.db.Collection("games").Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("查询games失败: %w", err)
	}
	defer cur.Close(ctx)

	var games []*model.Game
	if err := cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("解码games失败: %w", err)
	}
	return games, nil
}

func (s *MongoStore) CountReviewsByGame(ctx context.Context, gameID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.Collection("reviews").CountDocuments(ctx, bson.M{"gameId": gameID})
}

func (s *MongoStore) CountMatchesByStatus(ctx context.Context, status model.MatchStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.Collection("matches").CountDocuments(ctx, bson.M{"status": status})
}

// DeadLetter 死信入库。死信写入自身失败时只记日志（日志是最后的兜底）
func (s *MongoStore) DeadLetter(ctx context.Context, entry *model.DeadLetterEntry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.Collection("dead_letter_queue").InsertOne(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("operation", entry.Operation).
			Error("死信写入失败，数据一致性存在风险")
		return fmt.Errorf("死信写入失败: %w", err)
	}
	return nil
}

var _ interfaces.DocumentStore = (*MongoStore)(nil)
