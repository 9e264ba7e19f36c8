package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	pkgerrors "github.com/alainmurenzi/smart-edu-task-manager/pkg/errors"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// MustGetActor 从 Gin 上下文中提取当前操作者。
// JWT 中间件未正确注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	uid, ok := userID.(string)
	if !ok || uid == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}

	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	classID, _ := c.Get("class_id")
	classStr, _ := classID.(string)

	return service.Actor{
		UserID:  uid,
		Role:    model.Role(roleStr),
		ClassID: classStr,
	}, true
}

// respondServiceError 把业务错误映射为统一响应。
// 各 Handler 先处理自己关心的分支，剩余一律走这里兜底。
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(c, 10003, "无权操作")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrClassNameExists),
		errors.Is(err, service.ErrClassNotEmpty),
		errors.Is(err, service.ErrSubjectInUse):
		response.Conflict(c, 20002, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 20003, err.Error())
	case errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrNotTeacher),
		errors.Is(err, service.ErrSubjectNotInClass),
		errors.Is(err, service.ErrSelfDelete):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrInvalidPassword):
		response.Error(c, http.StatusUnauthorized, 11001, err.Error())
	default:
		response.InternalError(c)
	}
}
