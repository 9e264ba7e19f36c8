package handler

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

// TaskHandler 任务模块 HTTP 处理器
type TaskHandler struct {
	taskSvc       service.TaskService
	assignmentSvc service.AssignmentService
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(taskSvc service.TaskService, assignmentSvc service.AssignmentService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc, assignmentSvc: assignmentSvc}
}

// bindTaskCreate 解析创建请求。
// 纯 JSON 直接绑定；multipart 时 JSON 放在 data 字段，附件放在 file 字段。
func bindTaskCreate(c *gin.Context, req *dto.CreateTaskRequest) (string, io.ReadCloser, bool) {
	contentType := c.GetHeader("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBindJSON(req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return "", nil, false
		}
		return "", nil, true
	}

	if err := json.Unmarshal([]byte(c.PostForm("data")), req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return "", nil, false
	}
	if req.Title == "" || req.Description == "" || req.Deadline.IsZero() {
		response.BadRequest(c, 10001, "参数校验失败")
		return "", nil, false
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		// 附件可选
		return "", nil, true
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "附件读取失败")
		return "", nil, false
	}
	return fileHeader.Filename, f, true
}

// Create 创建任务并分发
// POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	fileName, file, ok := bindTaskCreate(c, &req)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	var reader io.Reader
	if file != nil {
		reader = file
	}
	result, err := h.taskSvc.Create(c.Request.Context(), actor, &req, fileName, reader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// List 任务列表及分发统计（教师/管理员）
// GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.taskSvc.List(c.Request.Context(), actor, &page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Get 任务详情
// GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.taskSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 编辑任务（管理员，乐观锁）
// PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.taskSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除任务（管理员，显式级联）
// DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.taskSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// Assign 追加分发任务到班级/学生
// POST /api/v1/tasks/:id/assign
func (h *TaskHandler) Assign(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	created, err := h.taskSvc.Assign(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, dto.ReassignResponse{Created: created})
}

// Reassign 补分发：为尚无记录的班级学生补建
// POST /api/v1/tasks/:id/reassign
func (h *TaskHandler) Reassign(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	created, err := h.assignmentSvc.Reassign(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, dto.ReassignResponse{Created: created})
}

// SuggestPriority 优先级建议
// POST /api/v1/tasks/priority/suggest
func (h *TaskHandler) SuggestPriority(c *gin.Context) {
	var req dto.SuggestPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	priority := h.taskSvc.SuggestPriority(c.Request.Context(), req.Text)
	response.OK(c, dto.SuggestPriorityResponse{Priority: priority})
}

// DownloadFile 下载任务附件
// GET /api/v1/tasks/:id/file
func (h *TaskHandler) DownloadFile(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	rc, name, err := h.taskSvc.OpenFile(c.Request.Context(), actor, c.Param("id"))
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
