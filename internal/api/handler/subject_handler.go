package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// SubjectHandler 科目与授课关系 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// Create 创建科目并挂到班级（管理员）
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.subjectSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// List 科目列表
// GET /api/v1/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	result, err := h.subjectSvc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 科目详情
// GET /api/v1/subjects/:id
func (h *SubjectHandler) Get(c *gin.Context) {
	result, err := h.subjectSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新科目（管理员）
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.subjectSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除科目（管理员）
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.subjectSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// AssignTeacher 为班级科目指派教师（管理员，写三元事实）
// POST /api/v1/classes/:id/subjects/:sid/teachers
func (h *SubjectHandler) AssignTeacher(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AssignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	err := h.subjectSvc.AssignTeacher(c.Request.Context(), actor, c.Param("id"), c.Param("sid"), req.TeacherID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, nil)
}

// RemoveTeacher 解除班级科目的教师指派（管理员）
// DELETE /api/v1/classes/:id/subjects/:sid/teachers/:tid
func (h *SubjectHandler) RemoveTeacher(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	err := h.subjectSvc.RemoveTeacher(c.Request.Context(), actor, c.Param("id"), c.Param("sid"), c.Param("tid"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListTeaching 教师授课关系列表
// GET /api/v1/teachers/:id/teaching
func (h *SubjectHandler) ListTeaching(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.subjectSvc.ListTeaching(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}
