package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Overview 全局统计总览（管理员）
// GET /api/v1/stats/overview
func (h *StatsHandler) Overview(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.statsSvc.Overview(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// StudentProgress 学生完成情况（教师视角，按授课班级投影）
// GET /api/v1/stats/students
func (h *StatsHandler) StudentProgress(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.statsSvc.StudentProgress(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}
