package webapi

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixelforge-server-go/internal/domain/auth"
	"pixelforge-server-go/internal/platform/logging"
	"pixelforge-server-go/internal/platform/storage"
	httptransport "pixelforge-server-go/internal/transport/http"
)

// UserService 注册登录与个人信息相关路由
type UserService struct {
	logger *logging.Logger
	users  storage.UserRepository
	tokens *auth.TokenManager
	gate   *auth.Gate
}

// NewUserService 构造函数
func NewUserService(
	logger *logging.Logger,
	users storage.UserRepository,
	tokens *auth.TokenManager,
	gate *auth.Gate,
) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
		tokens: tokens,
		gate:   gate,
	}
}

// Start 实现用户服务接口，注册所有用户相关路由
func (s *UserService) Start(ctx context.Context, apiGroup *gin.RouterGroup) error {
	apiGroup.POST("/user/login", s.handleLogin)
	apiGroup.POST("/user/logout", s.handleLogout)

	authGroup := apiGroup.Group("/user")
	authGroup.Use(httptransport.AuthMiddleware(s.gate, s.logger))
	{
		authGroup.GET("/profile", s.handleGetProfile)
	}

	s.logger.InfoTag("HTTP", "用户服务路由注册完成")
	return nil
}

// LoginRequest 用户登录请求体
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// handleLogin 用户登录
// @Summary 用户登录
// @Description 校验邮箱密码并签发会话token
// @Tags User
// @Accept json
// @Produce json
// @Param data body LoginRequest true "登录参数"
// @Success 200 {object} map[string]interface{} "登录成功返回token和用户信息"
// @Router /user/login [post]
func (s *UserService) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	user, err := s.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || user == nil || !verifyPassword(req.Password, user.Password) {
		// 不区分“账号不存在”和“密码错误”
		httptransport.RespondError(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	if user.Status == 0 {
		httptransport.RespondError(c, http.StatusForbidden, "account is disabled", nil)
		return
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}

	if err := s.users.TouchLastLogin(c.Request.Context(), user.ID); err != nil {
		s.logger.ErrorTag("HTTP", "更新登录时间失败: %v", err)
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	}, "login successful")
}

// handleLogout 用户登出
// @Summary 用户登出
// @Tags User
// @Produce json
// @Success 200 {object} map[string]interface{} "登出结果"
// @Router /user/logout [post]
func (s *UserService) handleLogout(c *gin.Context) {
	// 这里可以实现token黑名单机制
	httptransport.RespondSuccess(c, http.StatusOK, nil, "logout successful")
}

// handleGetProfile 获取当前登录用户的个人信息
// @Summary 获取用户资料
// @Tags User
// @Produce json
// @Success 200 {object} map[string]interface{} "用户资料"
// @Router /user/profile [get]
func (s *UserService) handleGetProfile(c *gin.Context) {
	principal, ok := httptransport.PrincipalFrom(c)
	if !ok {
		httptransport.RespondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	user, err := s.users.FindByID(c.Request.Context(), principal.ID)
	if err != nil {
		httptransport.RespondWithError(c, s.logger, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, user, "")
}

// 密码哈希
func hashPassword(password string) string {
	hash := md5.Sum([]byte(password + "pixelforge_salt"))
	return hex.EncodeToString(hash[:])
}

// 验证密码
func verifyPassword(password, hashedPassword string) bool {
	return hashPassword(password) == hashedPassword
}
