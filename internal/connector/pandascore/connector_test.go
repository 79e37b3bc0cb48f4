package pandascore

import (
	"testing"
	"time"

	"GameSenseIngest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestConvertMatch(t *testing.T) {
	raw := &model.PandaMatch{
		ID:          9001,
		Status:      "finished",
		WinnerID:    int64p(11),
		ScheduledAt: "2023-10-01T12:00:00Z",
		BeginAt:     "2023-10-01T12:07:00Z",
		Tournament:  &model.PandaRef{ID: 55, Name: "Playoffs"},
		League:      &model.PandaRef{Name: "ESL Pro League"},
		Serie:       &model.PandaSerie{Name: "S18", FullName: "Season 18"},
		Videogame:   &model.PandaRef{Name: "Counter-Strike 2"},
		Opponents: []model.PandaOpponent{
			{Opponent: &model.PandaRef{ID: 11, Name: "Alpha"}},
			{Opponent: &model.PandaRef{ID: 12, Name: "Beta"}},
		},
	}

	m := convertMatch(raw)
	require.NotNil(t, m)
	assert.Equal(t, "9001", m.ID)
	assert.Equal(t, model.StatusFinished, m.Status)
	assert.Equal(t, "11", m.WinnerID)
	assert.Equal(t, "55", m.TournamentID)
	assert.Equal(t, "Playoffs", m.TournamentName)
	assert.Equal(t, "11", m.TeamAID)
	assert.Equal(t, "Alpha", m.TeamAName)
	assert.Equal(t, "12", m.TeamBID)
	assert.Equal(t, "Beta", m.TeamBName)
	assert.Equal(t, "Counter-Strike 2", m.GameTitle)
	require.NotNil(t, m.ScheduledAt)
	assert.Equal(t, time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC), *m.ScheduledAt)

	// 图谱展示名三段各就各位（full_name优先于name）
	assert.Equal(t, "ESL Pro League", m.LeagueName)
	assert.Equal(t, "Season 18", m.SeriesName)
	assert.Equal(t, "Playoffs", m.StageName)
}

func TestConvertMatchMissingOpponents(t *testing.T) {
	raw := &model.PandaMatch{
		ID:     9002,
		Status: "not_started",
		Opponents: []model.PandaOpponent{
			{Opponent: &model.PandaRef{ID: 11, Name: "Alpha"}},
		},
	}

	m := convertMatch(raw)
	require.NotNil(t, m)
	assert.Equal(t, "11", m.TeamAID)
	// 缺席方用空ID+TBD占位
	assert.Equal(t, "", m.TeamBID)
	assert.Equal(t, "TBD", m.TeamBName)
	assert.Equal(t, "", m.TournamentID)
	assert.Equal(t, "Unknown", m.TournamentName)
	assert.Nil(t, m.ScheduledAt)
	assert.Nil(t, m.StartedAt)
}

func TestConvertMatchDirtyFields(t *testing.T) {
	raw := &model.PandaMatch{
		ID:          9003,
		Status:      "paused", // 表外状态
		ScheduledAt: "garbage",
	}

	m := convertMatch(raw)
	require.NotNil(t, m)
	// 脏字段兜底：状态SCHEDULED、时间nil，整条记录不丢
	assert.Equal(t, model.StatusScheduled, m.Status)
	assert.Nil(t, m.ScheduledAt)

	// 缺ID才整条丢弃
	assert.Nil(t, convertMatch(&model.PandaMatch{Status: "running"}))
}
