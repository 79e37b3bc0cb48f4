package interfaces

import (
	"context"

	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/model"

	"github.com/sirupsen/logrus"
)

// SourceConnector 所有数据源必须实现的核心接口
type SourceConnector interface {
	Name() string                                    // 数据源名称
	Fetch(ctx context.Context) (*model.Batch, error) // 抓取并归一化一批记录
}

// Factory 连接器工厂函数（Steam源需要读文档库里的steamAppId，故注入DocumentStore）
type Factory func(cfg *config.SourceConfig, docs DocumentStore, logger *logrus.Logger) SourceConnector
