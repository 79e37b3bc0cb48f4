package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig            `mapstructure:"server"`    // 服务器配置
	Mongo     MongoConfig             `mapstructure:"mongo"`     // 文档库配置
	Neo4j     Neo4jConfig             `mapstructure:"neo4j"`     // 图谱库配置
	Scheduler SchedulerConfig         `mapstructure:"scheduler"` // 调度配置
	Fallback  FallbackConfig          `mapstructure:"fallback"`  // 兜底数据配置
	Sources   map[string]SourceConfig `mapstructure:"sources"`   // 多数据源独立配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// MongoConfig MongoDB文档库配置
type MongoConfig struct {
	URI      string        `mapstructure:"uri"`      // 连接URI
	Database string        `mapstructure:"database"` // 库名
	Timeout  time.Duration `mapstructure:"timeout"`  // 单次操作超时
}

// Neo4jConfig Neo4j图谱库配置
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`      // bolt连接地址
	Username string `mapstructure:"username"` // 用户名
	Password string `mapstructure:"password"` // 密码
}

// SchedulerConfig 调度配置（固定间隔轮询，不做cron）
type SchedulerConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`    // 轮询检查间隔
	CatalogInterval time.Duration `mapstructure:"catalog_interval"` // 游戏目录同步间隔
	MatchInterval   time.Duration `mapstructure:"match_interval"`   // 比赛同步间隔
	ReviewInterval  time.Duration `mapstructure:"review_interval"`  // 评论同步间隔
}

// FallbackConfig 兜底数据阈值配置
type FallbackConfig struct {
	MinReviewsPerGame  int `mapstructure:"min_reviews_per_game"` // 单游戏最少评论数
	MinFinishedMatches int `mapstructure:"min_finished_matches"` // 全库最少已结束比赛数
	ReviewBatchLimit   int `mapstructure:"review_batch_limit"`   // 单轮扫描的游戏数上限
}

// SourceConfig 单个数据源的独立配置
type SourceConfig struct {
	BaseURL        string `mapstructure:"base_url"`         // API基础地址
	AuthURL        string `mapstructure:"auth_url"`         // 认证地址（IGDB走Twitch OAuth）
	ClientID       string `mapstructure:"client_id"`        // IGDB专属Client ID
	ClientSecret   string `mapstructure:"client_secret"`    // IGDB专属Client Secret
	Token          string `mapstructure:"token"`            // 通用Bearer Token（PandaScore用）
	MinRating      int    `mapstructure:"min_rating"`       // 最低评分过滤（IGDB百分制）
	MinReleaseDate int64  `mapstructure:"min_release_date"` // 最早发售时间过滤（Unix秒）
	Limit          int    `mapstructure:"limit"`            // 单次拉取条数（IGDB）
	PerPage        int    `mapstructure:"per_page"`         // 分页大小（PandaScore）
	PageSize       int    `mapstructure:"page_size"`        // 每游戏评论条数（Steam）
	DelayMS        int    `mapstructure:"delay_ms"`         // 连续调用间隔毫秒（Steam限速）
	Timeout        int    `mapstructure:"timeout"`          // 请求超时（秒）
	Proxy          string `mapstructure:"proxy"`            // 代理地址
}

// HasCredentials 数据源凭证是否齐全（缺凭证的任务降级为no-op）
func (s *SourceConfig) HasCredentials(name string) bool {
	switch name {
	case "igdb":
		return s.ClientID != "" && s.ClientSecret != ""
	case "pandascore":
		return s.Token != ""
	default:
		// Steam评论接口是公开接口，无需凭证
		return true
	}
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if g, ok := cfg.Sources["igdb"]; ok {
		if v := os.Getenv("IGDB_CLIENT_ID"); v != "" {
			g.ClientID = v
		}
		if v := os.Getenv("IGDB_CLIENT_SECRET"); v != "" {
			g.ClientSecret = v
		}
		cfg.Sources["igdb"] = g
	}
	if p, ok := cfg.Sources["pandascore"]; ok {
		if v := os.Getenv("PANDASCORE_API_KEY"); v != "" {
			p.Token = v
		}
		cfg.Sources["pandascore"] = p
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		cfg.Neo4j.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Neo4j.Password = v
	}
}
