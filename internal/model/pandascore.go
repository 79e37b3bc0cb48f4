package model

// PandaMatch PandaScore /matches/* 接口的原始结构
type PandaMatch struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	WinnerID    *int64          `json:"winner_id"`
	ScheduledAt string          `json:"scheduled_at"` // ISO8601，可空
	BeginAt     string          `json:"begin_at"`
	Tournament  *PandaRef       `json:"tournament"`
	League      *PandaRef       `json:"league"`
	Serie       *PandaSerie     `json:"serie"`
	Videogame   *PandaRef       `json:"videogame"`
	Opponents   []PandaOpponent `json:"opponents"`
}

type PandaRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PandaSerie 系列赛，展示名优先用full_name
type PandaSerie struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

type PandaOpponent struct {
	Opponent *PandaRef `json:"opponent"`
}
