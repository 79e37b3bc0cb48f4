package api

import (
	"fmt"
	"net/http"

	"GameSenseIngest/internal/interfaces"
	"GameSenseIngest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler 手动触发摄取任务的管理接口（调试与运维用，常规触发走调度器）
type SyncHandler struct {
	ingest *service.IngestService
	docs   interfaces.DocumentStore
	graph  interfaces.GraphStore
	logger *logrus.Logger
}

func NewSyncHandler(ingest *service.IngestService, docs interfaces.DocumentStore, graph interfaces.GraphStore, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{ingest: ingest, docs: docs, graph: graph, logger: logger}
}

// SyncSourceHandler 手动同步指定数据源（igdb/pandascore/steam）
func (h *SyncHandler) SyncSourceHandler(c *gin.Context) {
	source := c.Param("source")

	if err := h.ingest.RunSource(c.Request.Context(), source); err != nil {
		h.logger.Errorf("手动同步%s失败: %v", source, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s同步成功", source),
	})
}

// SyncFallbackHandler 手动触发兜底检查
func (h *SyncHandler) SyncFallbackHandler(c *gin.Context) {
	if err := h.ingest.RunFallback(c.Request.Context()); err != nil {
		h.logger.Errorf("手动兜底检查失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "兜底检查完成",
	})
}

// HealthHandler 健康检查：两个库都Ping通才算健康
func (h *SyncHandler) HealthHandler(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.docs.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": err.Error()})
		return
	}
	if err := h.graph.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "neo4j": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
