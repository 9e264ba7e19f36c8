package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("无可导出的数据")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 数据导出
//
// 设计说明：
//   - 用户名册、任务清单导出为 Excel (.xlsx)
//   - 学生个人任务截止时间导出为 iCalendar (.ics)，可被日历客户端订阅
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	ExportUsers(ctx context.Context, actor Actor) (*bytes.Buffer, string, error)
	ExportTasks(ctx context.Context, actor Actor) (*bytes.Buffer, string, error)
	// Calendar 生成学生个人任务的 ICS 日历（每个截止时间一个事件）
	Calendar(ctx context.Context, studentID string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportUsers(ctx context.Context, actor Actor) (*bytes.Buffer, string, error) {
	if actor.Role != model.RoleAdmin {
		return nil, "", ErrAccessDenied
	}

	users, _, err := s.repo.User.List(ctx, 0, 10000)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(users) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "用户名册"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"姓名", "邮箱", "角色", "科目", "班级", "注册时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, user := range users {
		subject := ""
		if user.Subject != nil {
			subject = *user.Subject
		}
		className := ""
		if user.Class != nil {
			className = user.Class.Name
		}
		values := []interface{}{
			user.Name,
			user.Email,
			string(user.Role),
			subject,
			className,
			user.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("users_%s.xlsx", time.Now().Format("20060102"))
	return &buf, filename, nil
}

func (s *exportService) ExportTasks(ctx context.Context, actor Actor) (*bytes.Buffer, string, error) {
	if actor.Role != model.RoleAdmin {
		return nil, "", ErrAccessDenied
	}

	items, _, err := s.repo.Task.ListWithCounts(ctx, 0, 10000)
	if err != nil {
		s.logger.Error("查询任务列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(items) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "任务清单"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"标题", "优先级", "截止时间", "分发人数", "完成人数", "完成率"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, item := range items {
		rate := ""
		if item.Total > 0 {
			rate = fmt.Sprintf("%.0f%%", float64(item.Completed)/float64(item.Total)*100)
		}
		values := []interface{}{
			item.Task.Title,
			string(item.Task.Priority),
			item.Task.Deadline.Format("2006-01-02 15:04"),
			item.Total,
			item.Completed,
			rate,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("tasks_%s.xlsx", time.Now().Format("20060102"))
	return &buf, filename, nil
}

func (s *exportService) Calendar(ctx context.Context, studentID string) (string, error) {
	assignments, err := s.repo.Assignment.ListByStudent(ctx, studentID)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//smart-edu-task-manager//task deadlines//CN")

	for i := range assignments {
		a := &assignments[i]
		if a.Task == nil {
			continue
		}
		event := cal.AddEvent(a.AssignmentID + "@smart-edu-task-manager")
		event.SetCreatedTime(a.AssignedAt)
		event.SetDtStampTime(a.AssignedAt)
		// 截止时间做为事件时刻，前后各占 30 分钟便于客户端展示
		event.SetStartAt(a.Task.Deadline.Add(-30 * time.Minute))
		event.SetEndAt(a.Task.Deadline)
		event.SetSummary("截止：" + a.Task.Title)
		event.SetDescription(a.Task.Description)
	}

	return cal.Serialize(), nil
}
