package normalize

import (
	"strings"
	"time"

	"GameSenseIngest/internal/model"
)

// statusTable PandaScore状态到内部枚举的固定映射表
var statusTable = map[string]model.MatchStatus{
	"running":     model.StatusLive,
	"finished":    model.StatusFinished,
	"not_started": model.StatusScheduled,
	"canceled":    model.StatusCancelled,
	"postponed":   model.StatusPostponed,
}

// MapStatus 状态归一化：大小写不敏感，表外取值（含带空白的脏值）一律兜底为SCHEDULED，永不报错
func MapStatus(raw string) model.MatchStatus {
	if s, ok := statusTable[strings.ToLower(raw)]; ok {
		return s
	}
	return model.StatusScheduled
}

// ParseInstant 容错时间解析：接受带Z后缀的ISO8601；空串或解析失败返回nil而非错误
// 脏时间戳绝不能中断所在记录的入库
func ParseInstant(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// CoverURL 封面地址改写：缩略图规格换成大图规格，并补协议前缀
// IGDB返回形如 //images.igdb.com/.../t_thumb/xxx.jpg
func CoverURL(raw string) string {
	if raw == "" {
		return ""
	}
	return "https:" + strings.Replace(raw, "t_thumb", "t_cover_big", 1)
}

// ExtractDeveloper 取首个involved company作为开发商，缺省"Unknown"
func ExtractDeveloper(companies []model.IGDBInvolvedCompany) string {
	if len(companies) > 0 && companies[0].Company.Name != "" {
		return companies[0].Company.Name
	}
	return "Unknown"
}

// TournamentName 拼接锦标赛展示名：league + series + stage，空段剔除
// 例："ESL Pro League - Season 18 - Playoffs"
func TournamentName(league, series, stage string) string {
	var parts []string
	for _, p := range []string{league, series, stage} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " - ")
}

// 情感关键词表（刻意的简易启发式，不是NLP，保持确定性方便测试）
var (
	positiveWords = []string{"amazing", "great", "love", "awesome", "fun", "excellent", "good", "best", "masterpiece", "recommend"}
	negativeWords = []string{"bad", "terrible", "boring", "broken", "awful", "disappointed", "waste", "bug", "worst", "refund"}
)

const sentimentStep = 0.25

// SentimentScore 关键词情感打分：命中正词+0.25、负词-0.25，截断到[-1,1]
// 子串匹配、大小写不敏感
func SentimentScore(content string) float64 {
	lower := strings.ToLower(content)
	score := 0.0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += sentimentStep
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= sentimentStep
		}
	}
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// RatingFromVote Steam二元好评/差评映射到0-10内部分制：好评10分、差评2分
func RatingFromVote(votedUp bool) int {
	if votedUp {
		return 10
	}
	return 2
}
