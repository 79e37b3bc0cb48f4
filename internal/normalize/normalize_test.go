package normalize

import (
	"strings"
	"testing"
	"time"

	"GameSenseIngest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStatus(t *testing.T) {
	cases := map[string]model.MatchStatus{
		"running":     model.StatusLive,
		"RUNNING":     model.StatusLive,
		"Finished":    model.StatusFinished,
		"not_started": model.StatusScheduled,
		"CANCELED":    model.StatusCancelled,
		"postponed":   model.StatusPostponed,
	}
	for raw, want := range cases {
		assert.Equal(t, want, MapStatus(raw), "raw=%s", raw)
	}

	// 表外取值一律兜底SCHEDULED
	assert.Equal(t, model.StatusScheduled, MapStatus("paused"))
	assert.Equal(t, model.StatusScheduled, MapStatus(""))
	assert.Equal(t, model.StatusScheduled, MapStatus("  running  "))
}

func TestParseInstant(t *testing.T) {
	got := ParseInstant("2023-10-01T12:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2023, 10, 1, 12, 30, 0, 0, time.UTC), *got)

	// 带时区偏移的合法ISO8601也接受，统一转UTC
	got = ParseInstant("2023-10-01T14:30:00+02:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2023, 10, 1, 12, 30, 0, 0, time.UTC), *got)

	// 空串和脏数据返回nil，不报错
	assert.Nil(t, ParseInstant(""))
	assert.Nil(t, ParseInstant("None"))
	assert.Nil(t, ParseInstant("2023/10/01 12:30"))
	assert.Nil(t, ParseInstant("not-a-date"))
}

func TestCoverURL(t *testing.T) {
	raw := "//images.igdb.com/igdb/image/upload/t_thumb/co1wyy.jpg"
	assert.Equal(t, "https://images.igdb.com/igdb/image/upload/t_cover_big/co1wyy.jpg", CoverURL(raw))
	assert.Equal(t, "", CoverURL(""))
}

func TestExtractDeveloper(t *testing.T) {
	companies := []model.IGDBInvolvedCompany{
		{Company: model.IGDBNamed{Name: "FromSoftware"}},
		{Company: model.IGDBNamed{Name: "Bandai Namco"}},
	}
	assert.Equal(t, "FromSoftware", ExtractDeveloper(companies))
	assert.Equal(t, "Unknown", ExtractDeveloper(nil))
	assert.Equal(t, "Unknown", ExtractDeveloper([]model.IGDBInvolvedCompany{{}}))
}

func TestTournamentName(t *testing.T) {
	assert.Equal(t, "ESL Pro League - Season 18 - Playoffs", TournamentName("ESL Pro League", "Season 18", "Playoffs"))
	assert.Equal(t, "ESL Pro League - Playoffs", TournamentName("ESL Pro League", "", "Playoffs"))
	assert.Equal(t, "Playoffs", TournamentName("", "", "Playoffs"))
	assert.Equal(t, "", TournamentName("", "", ""))
}

func TestSentimentScore(t *testing.T) {
	assert.Equal(t, 0.0, SentimentScore("mediocre experience overall"))
	assert.Equal(t, 0.25, SentimentScore("This game is great"))
	assert.Equal(t, 0.5, SentimentScore("Amazing game, I love it"))
	assert.Equal(t, -0.5, SentimentScore("Terrible and boring"))
	assert.Equal(t, 0.0, SentimentScore("great game but full of bugs"))

	// 大小写不敏感
	assert.Equal(t, 0.25, SentimentScore("GREAT stuff"))

	// 全命中也要截断在[-1,1]内
	all := strings.Join(positiveWords, " ")
	assert.Equal(t, 1.0, SentimentScore(all))
	all = strings.Join(negativeWords, " ")
	assert.Equal(t, -1.0, SentimentScore(all))
}

func TestRatingFromVote(t *testing.T) {
	assert.Equal(t, 10, RatingFromVote(true))
	assert.Equal(t, 2, RatingFromVote(false))
}
