package webapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pixelforge-server-go/internal/domain/analytics"
	"pixelforge-server-go/internal/domain/announcement"
	"pixelforge-server-go/internal/domain/audit"
	"pixelforge-server-go/internal/domain/auth"
	"pixelforge-server-go/internal/platform/errors"
	"pixelforge-server-go/internal/platform/logging"
	"pixelforge-server-go/internal/platform/storage"
	httptransport "pixelforge-server-go/internal/transport/http"
)

// AdminService 注册管理端统计、图表、列表与公告维护路由
type AdminService struct {
	logger        *logging.Logger
	gate          *auth.Gate
	stats         *analytics.Service
	users         storage.UserRepository
	projects      storage.ProjectRepository
	jobs          storage.JobRepository
	auditTrail    storage.AuditRepository
	announcements *announcement.Cache
	recorder      *audit.Recorder
}

// NewAdminService 构造函数
func NewAdminService(
	logger *logging.Logger,
	gate *auth.Gate,
	stats *analytics.Service,
	users storage.UserRepository,
	projects storage.ProjectRepository,
	jobs storage.JobRepository,
	auditTrail storage.AuditRepository,
	announcements *announcement.Cache,
	recorder *audit.Recorder,
) *AdminService {
	return &AdminService{
		logger:        logger,
		gate:          gate,
		stats:         stats,
		users:         users,
		projects:      projects,
		jobs:          jobs,
		auditTrail:    auditTrail,
		announcements: announcements,
		recorder:      recorder,
	}
}

// Start 实现 AdminService 接口，注册所有 Admin 相关路由
func (s *AdminService) Start(ctx context.Context, apiGroup *gin.RouterGroup) error {
	adminGroup := apiGroup.Group("/admin")
	adminGroup.Use(httptransport.AuthMiddleware(s.gate, s.logger), httptransport.AdminMiddleware())
	{
		adminGroup.GET("/stats/summary", s.handleStatsSummary)

		adminGroup.GET("/charts/jobs/daily", s.handleDailyJobsChart)
		adminGroup.GET("/charts/jobs/hourly", s.handleHourlyJobsChart)
		adminGroup.GET("/charts/duration/daily", s.handleDailyDurationChart)

		adminGroup.GET("/users", s.handleUserList)
		adminGroup.GET("/users/:id", s.handleUserGet)
		adminGroup.GET("/projects", s.handleProjectList)
		adminGroup.GET("/jobs", s.handleJobList)
		adminGroup.GET("/audit", s.handleAuditList)

		adminGroup.POST("/announcement", s.handleAnnouncementPublish)
		adminGroup.DELETE("/announcement", s.handleAnnouncementClear)
	}

	s.logger.InfoTag("HTTP", "管理服务路由注册完成")
	return nil
}

// queryParams 把查询串压平成单值映射，交给查询引擎统一校验
func queryParams(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}
	return params
}

// record 提交一条审计记录；落库失败只上报错误通道，不影响本次请求
func (s *AdminService) record(c *gin.Context, action audit.Action, resourceType, resourceID, description string, metadata map[string]any) {
	principal, ok := httptransport.PrincipalFrom(c)
	if !ok {
		return
	}
	s.recorder.Record(audit.Entry{
		ActorID:      principal.ID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		Metadata:     metadata,
		RequestID:    uuid.NewString(),
		IP:           c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
}

// handleStatsSummary 仪表盘汇总卡片
// @Summary 获取系统汇总统计
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{} "汇总统计"
// @Router /admin/stats/summary [get]
func (s *AdminService) handleStatsSummary(c *gin.Context) {
	summary, err := s.stats.Summary(c.Request.Context())
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	s.record(c, audit.ActionView, "stats", "", "viewed dashboard summary", nil)
	httptransport.RespondSuccess(c, http.StatusOK, summary, "")
}

// handleDailyJobsChart 最近30天每日任务量
// @Summary 每日任务量图表
// @Tags Admin
// @Produce json
// @Router /admin/charts/jobs/daily [get]
func (s *AdminService) handleDailyJobsChart(c *gin.Context) {
	series, err := s.stats.DailyJobSeries(c.Request.Context())
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, series, "")
}

// handleHourlyJobsChart 最近7天按一天24小时折叠的活跃度
// @Summary 小时级活跃度图表
// @Tags Admin
// @Produce json
// @Router /admin/charts/jobs/hourly [get]
func (s *AdminService) handleHourlyJobsChart(c *gin.Context) {
	series, err := s.stats.HourlyActivitySeries(c.Request.Context())
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, series, "")
}

// handleDailyDurationChart 最近30天平均处理耗时（秒）
// @Summary 平均耗时图表
// @Tags Admin
// @Produce json
// @Router /admin/charts/duration/daily [get]
func (s *AdminService) handleDailyDurationChart(c *gin.Context) {
	series, err := s.stats.DailyDurationSeries(c.Request.Context())
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, series, "")
}

// handleUserList 用户分页列表
// @Summary 用户列表
// @Tags Admin
// @Produce json
// @Param page query int false "页码"
// @Param pageSize query int false "每页条数"
// @Router /admin/users [get]
func (s *AdminService) handleUserList(c *gin.Context) {
	params := queryParams(c)
	result, err := s.users.List(c.Request.Context(), params)
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	s.record(c, audit.ActionList, "user", "", "listed users", map[string]any{"params": params})
	httptransport.RespondSuccess(c, http.StatusOK, result, "")
}

// handleUserGet 用户详情
// @Summary 用户详情
// @Tags Admin
// @Produce json
// @Param id path int true "用户ID"
// @Router /admin/users/{id} [get]
func (s *AdminService) handleUserGet(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httptransport.RespondWithError(c, s.logger, errors.NewValidation("users.get", []errors.FieldError{
			{Field: "id", Message: "must be a positive integer"},
		}))
		return
	}

	user, err := s.users.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	s.record(c, audit.ActionView, "user", c.Param("id"), "viewed user detail", nil)
	httptransport.RespondSuccess(c, http.StatusOK, user, "")
}

// handleProjectList 项目分页列表
// @Summary 项目列表
// @Tags Admin
// @Produce json
// @Router /admin/projects [get]
func (s *AdminService) handleProjectList(c *gin.Context) {
	params := queryParams(c)
	result, err := s.projects.List(c.Request.Context(), params)
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	s.record(c, audit.ActionList, "project", "", "listed projects", map[string]any{"params": params})
	httptransport.RespondSuccess(c, http.StatusOK, result, "")
}

// handleJobList 处理任务分页列表
// @Summary 任务列表
// @Tags Admin
// @Produce json
// @Router /admin/jobs [get]
func (s *AdminService) handleJobList(c *gin.Context) {
	params := queryParams(c)
	result, err := s.jobs.List(c.Request.Context(), params)
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	s.record(c, audit.ActionList, "job", "", "listed jobs", map[string]any{"params": params})
	httptransport.RespondSuccess(c, http.StatusOK, result, "")
}

// handleAuditList 审计日志分页列表（审计本身不再记审计）
// @Summary 审计日志
// @Tags Admin
// @Produce json
// @Router /admin/audit [get]
func (s *AdminService) handleAuditList(c *gin.Context) {
	result, err := s.auditTrail.List(c.Request.Context(), queryParams(c))
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, result, "")
}

// PublishAnnouncementRequest 发布公告请求体
type PublishAnnouncementRequest struct {
	Message  string     `json:"message"`
	Severity string     `json:"severity"`
	StartAt  *time.Time `json:"startAt"`
	EndAt    *time.Time `json:"endAt"`
}

// handleAnnouncementPublish 发布站点公告
// @Summary 发布公告
// @Tags Admin
// @Accept json
// @Produce json
// @Param data body PublishAnnouncementRequest true "公告内容"
// @Router /admin/announcement [post]
func (s *AdminService) handleAnnouncementPublish(c *gin.Context) {
	var req PublishAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	var fields []errors.FieldError
	if req.Message == "" {
		fields = append(fields, errors.FieldError{Field: "message", Message: "must not be empty"})
	}
	if !announcement.ValidSeverity(announcement.Severity(req.Severity)) {
		fields = append(fields, errors.FieldError{Field: "severity", Message: "must be one of info/success/warning/error"})
	}
	if req.StartAt != nil && req.EndAt != nil && !req.EndAt.After(*req.StartAt) {
		fields = append(fields, errors.FieldError{Field: "endAt", Message: "must be after startAt"})
	}
	if len(fields) > 0 {
		httptransport.RespondWithError(c, s.logger, errors.NewValidation("announcement.publish", fields))
		return
	}

	ann := &announcement.Announcement{
		ID:        uuid.NewString(),
		Message:   req.Message,
		Severity:  announcement.Severity(req.Severity),
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.announcements.Publish(c.Request.Context(), ann); err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}

	s.record(c, audit.ActionPublish, "announcement", ann.ID, "published announcement", map[string]any{
		"severity": req.Severity,
	})
	httptransport.RespondSuccess(c, http.StatusOK, ann, "announcement published")
}

// handleAnnouncementClear 下线当前公告
// @Summary 下线公告
// @Tags Admin
// @Produce json
// @Router /admin/announcement [delete]
func (s *AdminService) handleAnnouncementClear(c *gin.Context) {
	if err := s.announcements.Clear(c.Request.Context()); err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	s.record(c, audit.ActionDelete, "announcement", "", "cleared active announcement", nil)
	httptransport.RespondSuccess(c, http.StatusOK, nil, "announcement cleared")
}
