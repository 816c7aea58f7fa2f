package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pixelforge-server-go/internal/platform/errors"
	"pixelforge-server-go/internal/platform/logging"
)

// APIResponse 定义统一的接口返回结构体
// success: 请求是否成功
// data: 业务数据内容
// message: 对请求结果的说明信息
// error: 失败时的错误说明
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondSuccess 返回成功响应
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}
	c.JSON(httpStatus, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError 返回失败响应，可携带错误详情
func RespondError(c *gin.Context, httpStatus int, message string, data interface{}) {
	if message == "" {
		message = http.StatusText(httpStatus)
	}
	c.JSON(httpStatus, APIResponse{
		Success: false,
		Error:   message,
		Data:    data,
	})
}

// RespondWithError 按错误类别映射状态码；预期内错误带安全消息返回，
// 依赖故障只记日志，对外一律 500 加通用消息。
func RespondWithError(c *gin.Context, logger *logging.Logger, err error) {
	switch {
	case errors.IsKind(err, errors.KindValidation):
		RespondError(c, http.StatusBadRequest, "invalid request parameters", gin.H{
			"fields": errors.FieldsOf(err),
		})
	case errors.IsKind(err, errors.KindNotFound):
		RespondError(c, http.StatusNotFound, "resource not found", nil)
	case errors.IsKind(err, errors.KindUnauthenticated):
		RespondError(c, http.StatusUnauthorized, "authentication required", nil)
	case errors.IsKind(err, errors.KindForbidden):
		RespondError(c, http.StatusForbidden, "insufficient permissions", nil)
	default:
		if logger != nil {
			logger.ErrorTag("HTTP", "request failed: %v", err)
		}
		RespondError(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
