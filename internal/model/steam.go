package model

// SteamReviewResp Steam appreviews 接口响应（json=1）
type SteamReviewResp struct {
	Success int           `json:"success"` // 1为成功
	Reviews []SteamReview `json:"reviews"`
}

type SteamReview struct {
	RecommendationID string      `json:"recommendationid"`
	Author           SteamAuthor `json:"author"`
	Review           string      `json:"review"` // 评论正文
	VotedUp          bool        `json:"voted_up"`
	VotesUp          int         `json:"votes_up"`
	TimestampCreated int64       `json:"timestamp_created"` // Unix秒
}

type SteamAuthor struct {
	SteamID string `json:"steamid"`
}
