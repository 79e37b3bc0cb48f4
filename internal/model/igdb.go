package model

// IGDBGame IGDB /games 接口的原始结构（字段均可缺省，解析兜底在连接器）
type IGDBGame struct {
	ID               int64                 `json:"id"`
	Name             string                `json:"name"`
	Summary          string                `json:"summary"`
	FirstReleaseDate int64                 `json:"first_release_date"` // Unix秒，0视为缺省
	Rating           *float64              `json:"rating"`             // 百分制，可空
	Cover            *IGDBCover            `json:"cover"`
	Genres           []IGDBNamed           `json:"genres"`
	Platforms        []IGDBNamed           `json:"platforms"`
	InvolvedCompanys []IGDBInvolvedCompany `json:"involved_companies"`
	ExternalGames    []IGDBExternalGame    `json:"external_games"`
}

type IGDBCover struct {
	URL string `json:"url"` // 缩略图地址（t_thumb规格）
}

type IGDBNamed struct {
	Name string `json:"name"`
}

type IGDBInvolvedCompany struct {
	Company IGDBNamed `json:"company"`
}

// IGDBExternalGame 外部商店映射，Category=1为Steam
type IGDBExternalGame struct {
	Category int    `json:"category"`
	UID      string `json:"uid"`
}

// IGDBTokenResp Twitch OAuth令牌响应
type IGDBTokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
