package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"GameSenseIngest/internal/api"
	"GameSenseIngest/internal/config"
	"GameSenseIngest/internal/service"
	"GameSenseIngest/internal/store"

	// 连接器通过init自注册到工厂注册表
	_ "GameSenseIngest/internal/connector/igdb"
	_ "GameSenseIngest/internal/connector/pandascore"
	_ "GameSenseIngest/internal/connector/steam"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.Info("配置文件加载成功")

	// 3. 建立两个库的连接（任一失败直接退出：没有存储就没有可用的降级形态）
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	docs, err := store.NewMongoStore(startupCtx, &cfg.Mongo, logger)
	if err != nil {
		logger.Fatalf("连接MongoDB失败: %v", err)
	}
	logger.Info("MongoDB连接成功")

	graph, err := store.NewGraphDB(startupCtx, &cfg.Neo4j, logger)
	if err != nil {
		logger.Fatalf("连接Neo4j失败: %v", err)
	}
	logger.Info("Neo4j连接成功")

	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := docs.Close(closeCtx); err != nil {
			logger.Warnf("关闭MongoDB连接失败: %v", err)
		}
		if err := graph.Close(closeCtx); err != nil {
			logger.Warnf("关闭Neo4j连接失败: %v", err)
		}
	}()

	// 4. 组装摄取服务与调度器
	ingest := service.NewIngestService(docs, graph, cfg, logger)
	scheduler := service.NewScheduler(ingest, &cfg.Scheduler, logger)
	go scheduler.Run(context.Background())

	// 5. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册pprof 方便调试和监测性能问题
	pprof.Register(r)
	logger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 6. 注册管理接口（手动触发同步/兜底 + 健康检查）
	syncHandler := api.NewSyncHandler(ingest, docs, graph, logger)
	r.POST("/sync/source/:source", syncHandler.SyncSourceHandler)
	r.POST("/sync/fallback", syncHandler.SyncFallbackHandler)
	r.GET("/healthz", syncHandler.HealthHandler)

	// 7. 启动服务（从配置读取端口）
	port := cfg.Server.Port
	logger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logger.Fatalf("启动服务失败: %v", err)
	}
}
