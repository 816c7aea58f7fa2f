package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pixelforge-server-go/internal/domain/auth"
	"pixelforge-server-go/internal/platform/logging"
)

const principalKey = "principal"

// AuthMiddleware 通用认证中间件：校验会话并把主体写入上下文
func AuthMiddleware(gate *auth.Gate, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := gate.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			RespondWithError(c, logger, err)
			c.Abort()
			return
		}

		switch outcome.Status {
		case auth.StatusAuthorized:
			c.Set(principalKey, outcome.Principal)
			c.Next()
		case auth.StatusForbidden:
			RespondError(c, http.StatusForbidden, "account is disabled", nil)
			c.Abort()
		default:
			RespondError(c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
		}
	}
}

// AdminMiddleware 管理员权限中间件：要求已认证主体持有 admin 角色
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			RespondError(c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
			return
		}
		if principal.Role != auth.RoleAdmin {
			RespondError(c, http.StatusForbidden, "admin role required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom 取出认证中间件写入的请求主体
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*auth.Principal)
	return principal, ok
}
