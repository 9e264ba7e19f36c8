package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/jwt"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出，拉黑当前 Access Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString("token_jti")
	expiresAt, _ := c.Get("token_expires_at")
	exp, _ := expiresAt.(time.Time)

	if jti != "" && !exp.IsZero() {
		if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
			response.InternalError(c)
			return
		}
	}
	response.OK(c, nil)
}

// Refresh 刷新 Token 对（旧 refresh token 旋转后失效）
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenInvalid) {
			response.Unauthorized(c, 10002, "Refresh Token 无效或已过期")
			return
		}
		respondServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// RegisterTeacher 教师注册
// POST /api/v1/auth/register/teacher
func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var req dto.RegisterTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RegisterTeacher(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// RegisterStudent 学生注册（注册即分发班级既有任务）
// POST /api/v1/auth/register/student
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RegisterStudent(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), actor, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
