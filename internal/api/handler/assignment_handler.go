package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// AssignmentHandler 个人任务与提交 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
	submissionSvc service.SubmissionService
	exportSvc     service.ExportService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(
	assignmentSvc service.AssignmentService,
	submissionSvc service.SubmissionService,
	exportSvc service.ExportService,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentSvc: assignmentSvc,
		submissionSvc: submissionSvc,
		exportSvc:     exportSvc,
	}
}

// Dashboard 学生仪表盘：先对账（懒分发/清孤儿/逾期下沉），再按序返回
// GET /api/v1/assignments
func (h *AssignmentHandler) Dashboard(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.assignmentSvc.Reconcile(c.Request.Context(), actor.UserID, time.Now().UTC()); err != nil {
		respondServiceError(c, err)
		return
	}

	result, err := h.assignmentSvc.Dashboard(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 个人任务详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Start 开始处理（pending → in_progress）
// POST /api/v1/assignments/:id/start
func (h *AssignmentHandler) Start(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.assignmentSvc.Start(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Submit 提交任务（multipart：content 文本 + 可选 file 附件）
// POST /api/v1/assignments/:id/submissions
func (h *AssignmentHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var reader io.Reader
	fileName := ""
	if fileHeader, err := c.FormFile("file"); err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			response.BadRequest(c, 10001, "附件读取失败")
			return
		}
		defer f.Close()
		reader = f
		fileName = fileHeader.Filename
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), actor, c.Param("id"), &req, fileName, reader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// ListSubmissions 提交历史
// GET /api/v1/assignments/:id/submissions
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.ListByAssignment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Feedback 教师评分反馈
// POST /api/v1/submissions/:id/feedback
func (h *AssignmentHandler) Feedback(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.submissionSvc.Feedback(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// DownloadSubmissionFile 下载提交附件
// GET /api/v1/submissions/:id/file
func (h *AssignmentHandler) DownloadSubmissionFile(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	rc, name, err := h.submissionSvc.OpenFile(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}

// Calendar 个人任务截止时间的 ICS 日历
// GET /api/v1/assignments/calendar.ics
func (h *AssignmentHandler) Calendar(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	content, err := h.exportSvc.Calendar(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="assignments.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
