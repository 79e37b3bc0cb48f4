package steam

import (
	"testing"
	"time"

	"GameSenseIngest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertReview(t *testing.T) {
	raw := &model.SteamReview{
		RecommendationID: "12345",
		Author:           model.SteamAuthor{SteamID: "765611"},
		Review:           "Amazing game, love the combat",
		VotedUp:          true,
		VotesUp:          17,
		TimestampCreated: 1696161600,
	}

	r := convertReview(raw, "42")
	require.NotNil(t, r)
	assert.Equal(t, "steam_12345", r.ID)
	assert.Equal(t, "42", r.GameID)
	assert.Equal(t, "steam_765611", r.UserID)
	assert.Equal(t, 10, r.Rating)
	assert.Equal(t, model.SourceSteam, r.Source)
	assert.Equal(t, 17, r.Upvotes)
	assert.Equal(t, time.Unix(1696161600, 0).UTC(), r.Timestamp)
	// amazing + love 两个正词
	assert.InDelta(t, 0.5, r.SentimentScore, 1e-9)
}

func TestConvertReviewDownvote(t *testing.T) {
	raw := &model.SteamReview{
		RecommendationID: "9",
		Review:           "terrible, broken mess",
		VotedUp:          false,
	}

	r := convertReview(raw, "42")
	require.NotNil(t, r)
	// 差评映射到固定低分而不是连续分制
	assert.Equal(t, 2, r.Rating)
	assert.Negative(t, r.SentimentScore)
	// 缺时间戳不折算成1970纪元
	assert.True(t, r.Timestamp.IsZero())

	// 缺推荐ID整条丢弃
	assert.Nil(t, convertReview(&model.SteamReview{Review: "x"}, "42"))
}
