package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/connector"
	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/model"
	"GameSenseIngest/internal/normalize"
	"GameSenseIngest/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// steam对应IGDB external_games的category取值
const externalCategorySteam = 1

func init() {
	connector.Register("igdb", NewConnector)
}

// Connector IGDB游戏目录连接器（Twitch OAuth认证 + APICalypse查询）
type Connector struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger

	token        string
	tokenExpires time.Time
}

func NewConnector(cfg *config.SourceConfig, _ interfaces.DocumentStore, logger *logrus.Logger) interfaces.SourceConnector {
	return &Connector{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (c *Connector) Name() string {
	return "igdb"
}

// ensureToken 获取/续期访问令牌（IGDB走Twitch的client_credentials授权）
func (c *Connector) ensureToken(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpires) {
		return nil
	}

	authURL := fmt.Sprintf("%s/token?%s", c.cfg.AuthURL, url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, nil)
	if err != nil {
		return fmt.Errorf("构建认证请求失败: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("IGDB认证请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("IGDB认证失败: status=%d", resp.StatusCode)
	}

	var tr model.IGDBTokenResp
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("解析认证响应失败: %w", err)
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("认证响应缺少access_token")
	}

	c.token = tr.AccessToken
	// 提前5分钟过期，避开边界
	c.tokenExpires = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - 5*time.Minute)
	c.logger.Info("IGDB访问令牌已刷新")
	return nil
}

// Fetch 拉取高分新游戏并归一化（过滤条件：最低评分+最早发售时间，按评分降序）
func (c *Connector) Fetch(ctx context.Context) (*model.Batch, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	// APICalypse查询体
	body := fmt.Sprintf(`fields name, summary, cover.url, genres.name, platforms.name,
	first_release_date, rating, involved_companies.company.name,
	external_games.category, external_games.uid;
where rating > %d & first_release_date > %d;
sort rating desc;
limit %d;`, c.cfg.MinRating, c.cfg.MinReleaseDate, c.cfg.Limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/games", c.cfg.BaseURL), strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构建查询请求失败: %w", err)
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("IGDB查询请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("IGDB查询失败: status=%d", resp.StatusCode)
	}

	var raw []model.IGDBGame
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("解析IGDB响应失败: %w", err)
	}

	batch := &model.Batch{}
	for i := range raw {
		g := convertGame(&raw[i])
		if g == nil {
			c.logger.Warn("IGDB记录缺少ID，跳过")
			continue
		}
		batch.Games = append(batch.Games, g)
	}

	c.logger.Infof("IGDB拉取完成，共%d个游戏", len(batch.Games))
	return batch, nil
}

// convertGame 单条原始记录到归一化Game的确定性映射（缺字段逐项兜底，永不panic）
func convertGame(raw *model.IGDBGame) *model.Game {
	if raw.ID == 0 {
		return nil
	}

	g := &model.Game{
		ID:          strconv.FormatInt(raw.ID, 10),
		Title:       raw.Name,
		Description: raw.Summary,
		Developer:   normalize.ExtractDeveloper(raw.InvolvedCompanys),
	}
	if g.Title == "" {
		g.Title = "Unknown"
	}

	if raw.FirstReleaseDate > 0 {
		t := time.Unix(raw.FirstReleaseDate, 0).UTC()
		g.ReleaseDate = &t
	}
	if raw.Rating != nil {
		// IGDB百分制换算到内部0-10制
		score := *raw.Rating / 10.0
		g.AvgScore = &score
	}
	if raw.Cover != nil {
		g.CoverImageURL = normalize.CoverURL(raw.Cover.URL)
	}
	for _, genre := range raw.Genres {
		if genre.Name != "" {
			g.Genres = append(g.Genres, genre.Name)
		}
	}
	for _, p := range raw.Platforms {
		if p.Name != "" {
			g.Platforms = append(g.Platforms, p.Name)
		}
	}
	for _, ext := range raw.ExternalGames {
		if ext.Category == externalCategorySteam && ext.UID != "" {
			g.SteamAppID = ext.UID
			break
		}
	}
	return g
}
