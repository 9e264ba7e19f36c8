package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// ClassHandler 班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// Create 创建班级（管理员）
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// List 班级列表
// GET /api/v1/classes
func (h *ClassHandler) List(c *gin.Context) {
	result, err := h.classSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 班级详情（含学生数与科目）
// GET /api/v1/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	result, err := h.classSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新班级（管理员）
// PUT /api/v1/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.classSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除班级（管理员，班内仍有学生时拒绝）
// DELETE /api/v1/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.classSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListStudents 班级学生列表（教师/管理员）
// GET /api/v1/classes/:id/students
func (h *ClassHandler) ListStudents(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.classSvc.ListStudents(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}
