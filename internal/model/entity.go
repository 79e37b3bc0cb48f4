package model

import "time"

// MatchStatus 内部统一的比赛状态枚举
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusLive      MatchStatus = "LIVE"
	StatusFinished  MatchStatus = "FINISHED"
	StatusCancelled MatchStatus = "CANCELLED"
	StatusPostponed MatchStatus = "POSTPONED"
)

// ReviewSource 评论来源枚举
type ReviewSource string

const (
	SourceInternal     ReviewSource = "INTERNAL"
	SourceSteam        ReviewSource = "STEAM"
	SourceInternalMock ReviewSource = "INTERNAL_MOCK"
)

// Game 统一的游戏模型（文档库games集合，抹平IGDB差异）
type Game struct {
	ID            string     `bson:"_id"`           // IGDB原始ID（字符串化）
	Title         string     `bson:"title"`         // 标题
	Description   string     `bson:"description"`   // 简介
	ReleaseDate   *time.Time `bson:"releaseDate"`   // 发售时间（可空）
	Genres        []string   `bson:"genres"`        // 类型列表
	Platforms     []string   `bson:"platforms"`     // 平台列表
	Developer     string     `bson:"developer"`     // 开发商（首个involved company）
	AvgScore      *float64   `bson:"avgScore"`      // 平均分0-10（IGDB百分制/10）
	CoverImageURL string     `bson:"coverImageUrl"` // 封面大图地址
	SteamAppID    string     `bson:"steamAppId"`    // Steam商店ID（拉取评论用，可空）
	TotalReviews  int        `bson:"totalReviews"`  // 评论总数（只增不减）
	CreatedAt     time.Time  `bson:"createdAt"`     // 首次入库时间（$setOnInsert，永不覆盖）
	UpdatedAt     time.Time  `bson:"updatedAt"`     // 最近更新时间
}

// Match 统一的比赛模型（文档库matches集合）
// 图谱相关的联赛/系列/阶段字段不落文档库，仅供调和器投影图数据用
type Match struct {
	ID             string      `bson:"_id"`            // PandaScore原始ID（字符串化）
	TournamentID   string      `bson:"tournamentId"`   // 锦标赛ID（缺省为空串）
	TournamentName string      `bson:"tournamentName"` // 锦标赛名称
	TeamAID        string      `bson:"teamAId"`        // A队ID（缺队为空串）
	TeamAName      string      `bson:"teamAName"`      // A队名称（缺队为TBD）
	TeamBID        string      `bson:"teamBId"`        // B队ID
	TeamBName      string      `bson:"teamBName"`      // B队名称
	Status         MatchStatus `bson:"status"`         // 比赛状态
	WinnerID       string      `bson:"winnerId"`       // 胜者ID（仅FINISHED有意义）
	GameTitle      string      `bson:"gameTitle"`      // 所属游戏
	ScheduledAt    *time.Time  `bson:"scheduledAt"`    // 计划开始时间（可空）
	StartedAt      *time.Time  `bson:"startedAt"`      // 实际开始时间（可空）
	CreatedAt      time.Time   `bson:"createdAt"`      // 首次入库时间
	UpdatedAt      time.Time   `bson:"updatedAt"`      // 最近更新时间

	LeagueName string `bson:"-"` // 联赛名（仅图谱投影用）
	SeriesName string `bson:"-"` // 系列名
	StageName  string `bson:"-"` // 阶段名（PandaScore的tournament.name）
}

// Review 统一的评论模型（文档库reviews集合）
type Review struct {
	ID             string       `bson:"_id"`            // 来源前缀+原始ID（steam_xxx/mock_xxx）
	GameID         string       `bson:"gameId"`         // 关联游戏ID
	UserID         string       `bson:"userId"`         // 评论用户ID
	Content        string       `bson:"content"`        // 评论内容
	Rating         int          `bson:"rating"`         // 评分0-10
	SentimentScore float64      `bson:"sentimentScore"` // 情感分[-1,1]
	Source         ReviewSource `bson:"source"`         // 来源标记
	Timestamp      time.Time    `bson:"timestamp"`      // 评论时间
	Upvotes        int          `bson:"upvotes"`        // 赞
	Downvotes      int          `bson:"downvotes"`      // 踩
	CreatedAt      time.Time    `bson:"createdAt"`      // 首次入库时间
}

// Team 战队节点（仅图谱库）
type Team struct {
	ID        string
	Name      string
	GameTitle string
}

// Tournament 锦标赛节点（仅图谱库），Name为league/series/stage拼接
type Tournament struct {
	ID        string
	Name      string
	GameTitle string
}

// Batch 连接器一次抓取的归一化结果
type Batch struct {
	Games   []*Game
	Matches []*Match
	Reviews []*Review
}

// Size 批次内记录总数
func (b *Batch) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Games) + len(b.Matches) + len(b.Reviews)
}

// DeadLetterEntry 死信记录（入库失败的操作，留待人工对账）
type DeadLetterEntry struct {
	Operation  string    `bson:"operation"`  // 失败的操作名
	ResourceID string    `bson:"resourceId"` // 相关记录ID
	Error      string    `bson:"error"`      // 错误信息
	FailedAt   time.Time `bson:"failedAt"`   // 失败时间
	RetryCount int       `bson:"retryCount"` // 重试次数
	Resolved   bool      `bson:"resolved"`   // 是否已人工处理
}
