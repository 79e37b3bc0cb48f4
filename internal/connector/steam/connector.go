package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/connector"
	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/model"
	"GameSenseIngest/internal/normalize"
	"GameSenseIngest/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

func init() {
	connector.Register("steam", NewConnector)
}

// 单轮最多覆盖的游戏数（配合请求间延迟，限制单轮耗时）
const maxGamesPerRun = 50

// Connector Steam评论连接器：以文档库中带steamAppId的游戏为键逐个拉取
type Connector struct {
	cfg        *config.SourceConfig
	docs       interfaces.DocumentStore
	httpClient *http.Client
	logger     *logrus.Logger
	sleep      func(time.Duration) // 测试注入
}

func NewConnector(cfg *config.SourceConfig, docs interfaces.DocumentStore, logger *logrus.Logger) interfaces.SourceConnector {
	return &Connector{
		cfg:        cfg,
		docs:       docs,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
		sleep:      time.Sleep,
	}
}

func (c *Connector) Name() string {
	return "steam"
}

// Fetch 对每个带商店ID的游戏拉一页最新评论
// 相邻两次调用之间固定延迟（劝告式限速，不做令牌桶/退避）
func (c *Connector) Fetch(ctx context.Context) (*model.Batch, error) {
	games, err := c.docs.ListGamesWithSteamApp(ctx, maxGamesPerRun)
	if err != nil {
		return nil, fmt.Errorf("查询带Steam ID的游戏失败: %w", err)
	}
	if len(games) == 0 {
		c.logger.Info("文档库中暂无带Steam商店ID的游戏")
		return &model.Batch{}, nil
	}

	delay := time.Duration(c.cfg.DelayMS) * time.Millisecond

	batch := &model.Batch{}
	for i, g := range games {
		if i > 0 && delay > 0 {
			c.sleep(delay)
		}

		reviews, err := c.fetchGameReviews(ctx, g)
		if err != nil {
			c.logger.WithError(err).WithField("appId", g.SteamAppID).Warn("拉取游戏评论失败，跳过该游戏")
			continue
		}
		batch.Reviews = append(batch.Reviews, reviews...)
	}

	c.logger.Infof("Steam拉取完成，共%d条评论（覆盖%d个游戏）", len(batch.Reviews), len(games))
	return batch, nil
}

func (c *Connector) fetchGameReviews(ctx context.Context, g *model.Game) ([]*model.Review, error) {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	reqURL := fmt.Sprintf("%s/appreviews/%s?json=1&num_per_page=%d&filter=recent&language=english",
		c.cfg.BaseURL, g.SteamAppID, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("响应异常: status=%d", resp.StatusCode)
	}

	var sr model.SteamReviewResp
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if sr.Success != 1 {
		return nil, fmt.Errorf("Steam接口返回失败: success=%d", sr.Success)
	}

	var out []*model.Review
	for i := range sr.Reviews {
		if r := convertReview(&sr.Reviews[i], g.ID); r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// convertReview 单条Steam评论到归一化Review的映射
// 二元好评/差评映射到固定高低分；情感分走关键词启发式
func convertReview(raw *model.SteamReview, gameID string) *model.Review {
	if raw.RecommendationID == "" {
		return nil
	}

	r := &model.Review{
		ID:             "steam_" + raw.RecommendationID,
		GameID:         gameID,
		UserID:         "steam_" + raw.Author.SteamID,
		Content:        raw.Review,
		Rating:         normalize.RatingFromVote(raw.VotedUp),
		SentimentScore: normalize.SentimentScore(raw.Review),
		Source:         model.SourceSteam,
		Upvotes:        raw.VotesUp,
	}
	// 缺省的评论时间保持零值，不折算成1970纪元
	if raw.TimestampCreated > 0 {
		r.Timestamp = time.Unix(raw.TimestampCreated, 0).UTC()
	}
	return r
}
