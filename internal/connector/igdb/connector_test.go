package igdb

import (
	"testing"
	"time"

	"GameSenseIngest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertGame(t *testing.T) {
	rating := 85.0
	raw := &model.IGDBGame{
		ID:               42,
		Name:             "Foo",
		Summary:          "A fine game",
		FirstReleaseDate: 1609459200, // 2021-01-01T00:00:00Z
		Rating:           &rating,
		Cover:            &model.IGDBCover{URL: "//images.igdb.com/t_thumb/abc.jpg"},
		Genres:           []model.IGDBNamed{{Name: "RPG"}, {Name: "Adventure"}},
		Platforms:        []model.IGDBNamed{{Name: "PC"}},
		InvolvedCompanys: []model.IGDBInvolvedCompany{{Company: model.IGDBNamed{Name: "FromSoftware"}}},
		ExternalGames: []model.IGDBExternalGame{
			{Category: 5, UID: "gog_1"},
			{Category: 1, UID: "570"},
		},
	}

	g := convertGame(raw)
	require.NotNil(t, g)
	assert.Equal(t, "42", g.ID)
	assert.Equal(t, "Foo", g.Title)
	require.NotNil(t, g.AvgScore)
	assert.InDelta(t, 8.5, *g.AvgScore, 1e-9)
	require.NotNil(t, g.ReleaseDate)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), *g.ReleaseDate)
	assert.Equal(t, "https://images.igdb.com/t_cover_big/abc.jpg", g.CoverImageURL)
	assert.Equal(t, "FromSoftware", g.Developer)
	assert.Equal(t, []string{"RPG", "Adventure"}, g.Genres)
	assert.Equal(t, "570", g.SteamAppID)
}

func TestConvertGameDefaults(t *testing.T) {
	g := convertGame(&model.IGDBGame{ID: 7})
	require.NotNil(t, g)
	assert.Equal(t, "7", g.ID)
	assert.Equal(t, "Unknown", g.Title)
	assert.Equal(t, "Unknown", g.Developer)
	assert.Nil(t, g.AvgScore)
	assert.Nil(t, g.ReleaseDate)
	assert.Empty(t, g.CoverImageURL)
	assert.Empty(t, g.SteamAppID)

	// 缺ID的记录整条丢弃
	assert.Nil(t, convertGame(&model.IGDBGame{Name: "NoID"}))
}
