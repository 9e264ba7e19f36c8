package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/service"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportUsers 导出用户名册（管理员）
// GET /api/v1/export/users.xlsx
func (h *ExportHandler) ExportUsers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportUsers(c.Request.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrExportNoData) {
			response.NotFound(c, 20001, err.Error())
			return
		}
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportTasks 导出任务清单（管理员）
// GET /api/v1/export/tasks.xlsx
func (h *ExportHandler) ExportTasks(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportTasks(c.Request.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrExportNoData) {
			response.NotFound(c, 20001, err.Error())
			return
		}
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
