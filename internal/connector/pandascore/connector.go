package pandascore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/connector"
	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/model"
	"GameSenseIngest/internal/normalize"
	"GameSenseIngest/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

func init() {
	connector.Register("pandascore", NewConnector)
}

// Connector PandaScore电竞比赛连接器（进行中/即将开始/已结束三个分区）
type Connector struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewConnector(cfg *config.SourceConfig, _ interfaces.DocumentStore, logger *logrus.Logger) interfaces.SourceConnector {
	return &Connector{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (c *Connector) Name() string {
	return "pandascore"
}

// Fetch 依次拉取三个状态分区的比赛并归一化
// 单个分区失败只告警，不拖垮其余分区（下个调度周期自然重试）
func (c *Connector) Fetch(ctx context.Context) (*model.Batch, error) {
	perPage := c.cfg.PerPage
	if perPage <= 0 {
		perPage = 50
	}

	endpoints := []string{
		fmt.Sprintf("/matches/running?per_page=%d", perPage),
		fmt.Sprintf("/matches/upcoming?per_page=%d&sort=begin_at", perPage),
		fmt.Sprintf("/matches/past?per_page=%d", perPage),
	}

	batch := &model.Batch{}
	fetched := 0
	for _, ep := range endpoints {
		raw, err := c.fetchPartition(ctx, ep)
		if err != nil {
			c.logger.WithError(err).Warnf("拉取%s失败", ep)
			continue
		}
		fetched++
		for i := range raw {
			m := convertMatch(&raw[i])
			if m == nil {
				c.logger.Warn("PandaScore记录缺少ID，跳过")
				continue
			}
			batch.Matches = append(batch.Matches, m)
		}
	}

	// 三个分区全军覆没按抓取失败处理（区别于确实没有比赛）
	if fetched == 0 {
		return nil, fmt.Errorf("PandaScore所有分区拉取失败")
	}

	c.logger.Infof("PandaScore拉取完成，共%d场比赛", len(batch.Matches))
	return batch, nil
}

func (c *Connector) fetchPartition(ctx context.Context, endpoint string) ([]model.PandaMatch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("响应异常: status=%d", resp.StatusCode)
	}

	var matches []model.PandaMatch
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return matches, nil
}

// convertMatch 单条原始比赛到归一化Match的确定性映射
// 缺队用空ID+TBD占位；脏状态/脏时间由normalize兜底，不会中断本条记录
func convertMatch(raw *model.PandaMatch) *model.Match {
	if raw.ID == 0 {
		return nil
	}

	m := &model.Match{
		ID:             strconv.FormatInt(raw.ID, 10),
		TournamentName: "Unknown",
		TeamAName:      "TBD",
		TeamBName:      "TBD",
		Status:         normalize.MapStatus(raw.Status),
		GameTitle:      "Unknown",
		ScheduledAt:    normalize.ParseInstant(raw.ScheduledAt),
		StartedAt:      normalize.ParseInstant(raw.BeginAt),
	}

	if raw.WinnerID != nil {
		m.WinnerID = strconv.FormatInt(*raw.WinnerID, 10)
	}
	if raw.Videogame != nil && raw.Videogame.Name != "" {
		m.GameTitle = raw.Videogame.Name
	}
	if raw.Tournament != nil {
		m.TournamentID = strconv.FormatInt(raw.Tournament.ID, 10)
		if raw.Tournament.Name != "" {
			m.TournamentName = raw.Tournament.Name
		}
		// 图谱侧锦标赛展示名的三段来源
		m.StageName = raw.Tournament.Name
	}
	if raw.League != nil {
		m.LeagueName = raw.League.Name
	}
	if raw.Serie != nil {
		if raw.Serie.FullName != "" {
			m.SeriesName = raw.Serie.FullName
		} else {
			m.SeriesName = raw.Serie.Name
		}
	}

	if len(raw.Opponents) > 0 {
		m.TeamAID, m.TeamAName = opponentIdentity(raw.Opponents[0])
	}
	if len(raw.Opponents) > 1 {
		m.TeamBID, m.TeamBName = opponentIdentity(raw.Opponents[1])
	}
	return m
}

// opponentIdentity 参赛方身份提取，缺位时退回空ID+TBD
func opponentIdentity(o model.PandaOpponent) (id, name string) {
	if o.Opponent == nil || o.Opponent.ID == 0 {
		return "", "TBD"
	}
	name = o.Opponent.Name
	if name == "" {
		name = "TBD"
	}
	return strconv.FormatInt(o.Opponent.ID, 10), name
}
