package webapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixelforge-server-go/internal/domain/announcement"
	"pixelforge-server-go/internal/platform/logging"
	httptransport "pixelforge-server-go/internal/transport/http"
)

// AnnouncementService 注册公开的站点公告查询路由
type AnnouncementService struct {
	logger *logging.Logger
	cache  *announcement.Cache
}

// NewAnnouncementService 构造函数
func NewAnnouncementService(logger *logging.Logger, cache *announcement.Cache) *AnnouncementService {
	return &AnnouncementService{
		logger: logger,
		cache:  cache,
	}
}

// Start 实现公告服务接口，注册公开路由（无需登录）
func (s *AnnouncementService) Start(ctx context.Context, apiGroup *gin.RouterGroup) error {
	apiGroup.GET("/announcement", s.handleGetAnnouncement)

	s.logger.InfoTag("HTTP", "公告服务路由注册完成")
	return nil
}

// handleGetAnnouncement 查询当前生效的公告，没有则 data 为 null
// @Summary 获取当前公告
// @Tags Announcement
// @Produce json
// @Success 200 {object} map[string]interface{} "当前公告，可能为空"
// @Router /announcement [get]
func (s *AnnouncementService) handleGetAnnouncement(c *gin.Context) {
	active, err := s.cache.GetActive(c.Request.Context())
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, active, "")
}
