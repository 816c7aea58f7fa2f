package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pixelforge-server-go/internal/domain/analytics"
	"pixelforge-server-go/internal/domain/announcement"
	"pixelforge-server-go/internal/domain/audit"
	"pixelforge-server-go/internal/domain/auth"
	platformconfig "pixelforge-server-go/internal/platform/config"
	platformerrors "pixelforge-server-go/internal/platform/errors"
	platformlogging "pixelforge-server-go/internal/platform/logging"
	platformstorage "pixelforge-server-go/internal/platform/storage"
	httptransport "pixelforge-server-go/internal/transport/http"
	httpwebapi "pixelforge-server-go/internal/transport/http/webapi"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="zh-CN">
	<head>
		<meta charset="utf-8" />
		<title>PixelForge API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

// appState 保存初始化完成后的全部共享依赖
type appState struct {
	config        *platformconfig.Config
	logger        *platformlogging.Logger
	db            *gorm.DB
	users         platformstorage.UserRepository
	projects      platformstorage.ProjectRepository
	jobs          platformstorage.JobRepository
	auditTrail    platformstorage.AuditRepository
	announcements *announcement.Cache
	tokens        *auth.TokenManager
	gate          *auth.Gate
	stats         *analytics.Service
	recorder      *audit.Recorder
}

// principalSource 把用户仓库适配成认证网关需要的主体查询接口
type principalSource struct {
	users platformstorage.UserRepository
}

func (s *principalSource) PrincipalByID(ctx context.Context, id uint) (*auth.Principal, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		Disabled: user.Status == 0,
	}, nil
}

// Run 启动整个服务生命周期，负责加载配置、初始化依赖和优雅关停。
func Run(ctx context.Context, configPath string) error {
	state, err := initialize(configPath)
	if err != nil {
		return err
	}

	config := state.config
	logger := state.logger

	defer func() {
		// 先排空审计队列再断开下游连接
		state.recorder.Close()
		if closeErr := state.announcements.Close(); closeErr != nil {
			logger.ErrorTag("引导", "公告缓存未正常关闭: %v", closeErr)
		}
		if closeErr := platformstorage.Close(state.db); closeErr != nil {
			logger.ErrorTag("引导", "数据库未正常关闭: %v", closeErr)
		}
		logger.Close()
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return fmt.Errorf("启动 Http 服务失败: %w", err)
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("引导", "服务已退出: %s:%d", config.Server.IP, config.Server.Port)
	return nil
}

// initialize 按依赖顺序构建全部组件
func initialize(configPath string) (*appState, error) {
	config, err := platformconfig.NewLoader(configPath).Load()
	if err != nil {
		return nil, err
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    config.Log.Level,
		Dir:      config.Log.Dir,
		Filename: config.Log.File,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to create logger", err)
	}
	logger.InfoTag("引导", "配置加载完成，数据库 %s", config.Database.DSN)

	db, err := platformstorage.Open(config.Database.DSN)
	if err != nil {
		logger.Close()
		return nil, err
	}
	logger.InfoTag("引导", "数据库初始化完成")

	users := platformstorage.NewUserRepository(db)
	projects := platformstorage.NewProjectRepository(db)
	jobs := platformstorage.NewJobRepository(db)
	auditTrail := platformstorage.NewAuditRepository(db)

	announcements, err := announcement.NewCache(announcement.Config{
		Addr:     config.Redis.Addr,
		Username: config.Redis.Username,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
		Prefix:   config.Redis.Prefix,
	})
	if err != nil {
		_ = platformstorage.Close(db)
		logger.Close()
		return nil, err
	}
	logger.InfoTag("引导", "公告缓存已连接 %s", config.Redis.Addr)

	tokens := auth.NewTokenManager(config.Server.JWTSecret, config.Server.TokenTTL)
	gate := auth.NewGate(tokens, &principalSource{users: users})

	recorder, err := audit.NewRecorder(platformstorage.NewAuditSink(db), func(recordErr error) {
		logger.ErrorTag("审计", "审计记录写入失败: %v", recordErr)
	})
	if err != nil {
		_ = announcements.Close()
		_ = platformstorage.Close(db)
		logger.Close()
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "audit:init-recorder", "failed to create audit recorder", err)
	}

	return &appState{
		config:        config,
		logger:        logger,
		db:            db,
		users:         users,
		projects:      projects,
		jobs:          jobs,
		auditTrail:    auditTrail,
		announcements: announcements,
		tokens:        tokens,
		gate:          gate,
		stats:         analytics.NewService(users, projects, jobs),
		recorder:      recorder,
	}, nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine
	apiGroup := httpRouter.API

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Error:   "api not found",
			})
			return
		}

		c.File(config.Dashboard.StaticDir + "/index.html")
	})

	userService := httpwebapi.NewUserService(logger, state.users, state.tokens, state.gate)
	announcementService := httpwebapi.NewAnnouncementService(logger, state.announcements)
	adminService := httpwebapi.NewAdminService(
		logger,
		state.gate,
		state.stats,
		state.users,
		state.projects,
		state.jobs,
		state.auditTrail,
		state.announcements,
		state.recorder,
	)

	// 注册服务路由
	if err := userService.Start(groupCtx, apiGroup); err != nil {
		return nil, err
	}
	if err := announcementService.Start(groupCtx, apiGroup); err != nil {
		return nil, err
	}
	if err := adminService.Start(groupCtx, apiGroup); err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "生成 OpenAPI 文档失败: %v", err)
			c.JSON(http.StatusInternalServerError, httptransport.APIResponse{
				Success: false,
				Error:   "failed to generate openapi spec",
			})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	g.Go(func() error {
		logger.InfoTag("HTTP", "Gin 服务已启动，访问地址 http://localhost:%d", config.Server.Port)
		logger.InfoTag("HTTP", "在线文档入口: http://localhost:%d/docs", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "HTTP 服务关闭失败: %v", err)
			} else {
				logger.InfoTag("HTTP", "HTTP 服务已优雅关闭")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "HTTP 服务启动失败: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("引导", "收到系统信号 %v，正在进行资源清理", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("引导", "服务关闭过程中出现错误: %v", err)
			return err
		}
		logger.InfoTag("引导", "所有服务已成功关闭")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("服务关闭超时")
		logger.ErrorTag("引导", "服务关闭超时，已强制退出")
		return timeoutErr
	}
	return nil
}
