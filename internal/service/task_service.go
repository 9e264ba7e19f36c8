package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/storage"
)

// TaskService 任务管理与分发目标
type TaskService interface {
	// Create 创建任务并立即分发到指定班级/学生
	Create(ctx context.Context, actor Actor, req *dto.CreateTaskRequest, fileName string, file io.Reader) (*dto.TaskResponse, error)
	Get(ctx context.Context, actor Actor, taskID string) (*dto.TaskResponse, error)
	List(ctx context.Context, actor Actor, page *dto.PaginationRequest) ([]dto.TaskWithCountsResponse, int64, error)
	// Update 管理员编辑，version 不匹配返回 pkg/errors.ErrOptimisticLock
	Update(ctx context.Context, actor Actor, taskID string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	// Delete 级联删除：提交 → 个人任务 → 任务本体
	Delete(ctx context.Context, actor Actor, taskID string) error
	// Assign 把已有任务追加分发到新的班级/学生，只增不减
	Assign(ctx context.Context, actor Actor, taskID string, req *dto.AssignTaskRequest) (int, error)
	SuggestPriority(ctx context.Context, text string) string
	// OpenFile 打开任务附件，调用方负责 Close
	OpenFile(ctx context.Context, actor Actor, taskID string) (io.ReadCloser, string, error)
}

type taskService struct {
	repo          *repository.Repository
	store         storage.FileStore
	assignmentSvc AssignmentService
	logger        *zap.Logger
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(repo *repository.Repository, store storage.FileStore, assignmentSvc AssignmentService, logger *zap.Logger) TaskService {
	return &taskService{repo: repo, store: store, assignmentSvc: assignmentSvc, logger: logger}
}

func (s *taskService) Create(ctx context.Context, actor Actor, req *dto.CreateTaskRequest, fileName string, file io.Reader) (*dto.TaskResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	priority := model.Priority(req.Priority)
	if req.Priority == "" {
		priority = SuggestPriority(req.Title + " " + req.Description)
	} else if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	task := &model.Task{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		Priority:     priority,
		Instructions: req.Instructions,
		CreatedBy:    actor.UserID,
	}
	if req.AssignedTeacherID != "" {
		teacher, err := s.repo.User.GetByID(ctx, req.AssignedTeacherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if teacher.Role != model.RoleTeacher {
			return nil, ErrNotTeacher
		}
		task.AssignedTeacherID = &req.AssignedTeacherID
	}

	if file != nil {
		token, err := s.store.Save(ctx, fileName, file)
		if err != nil {
			s.logger.Error("保存任务附件失败", zap.String("filename", fileName), zap.Error(err))
			return nil, err
		}
		task.FileToken = &token
	}

	if err := s.repo.Task.Create(ctx, task); err != nil {
		return nil, err
	}

	if _, err := s.distribute(ctx, task, req.ClassIDs, req.StudentIDs); err != nil {
		return nil, err
	}

	s.logger.Info("任务创建完成",
		zap.String("task_id", task.TaskID),
		zap.String("created_by", actor.UserID),
		zap.Int("classes", len(req.ClassIDs)),
		zap.Int("students", len(req.StudentIDs)),
	)

	created, err := s.repo.Task.GetByID(ctx, task.TaskID)
	if err != nil {
		return nil, err
	}
	return toTaskResponse(created), nil
}

// distribute 把任务分发到班级与个别学生，返回新建记录数。
// 班级目标先记录关联事实，再对当前在班学生逐一落库并通知；
// 晚于此刻注册的学生由注册分发与仪表盘对账兜底。
func (s *taskService) distribute(ctx context.Context, task *model.Task, classIDs, studentIDs []string) (int, error) {
	created := 0

	if len(classIDs) > 0 {
		for _, classID := range classIDs {
			if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return created, ErrClassNotFound
				}
				return created, err
			}
		}
		if err := s.repo.Task.AddClasses(ctx, task.TaskID, classIDs); err != nil {
			return created, err
		}
		for _, classID := range classIDs {
			students, err := s.repo.User.ListStudentsByClass(ctx, classID)
			if err != nil {
				return created, err
			}
			for i := range students {
				n, err := s.ensureAndNotify(ctx, task, students[i].UserID)
				if err != nil {
					return created, err
				}
				created += n
			}
		}
	}

	for _, studentID := range studentIDs {
		student, err := s.repo.User.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return created, ErrUserNotFound
			}
			return created, err
		}
		if student.Role != model.RoleStudent {
			continue
		}
		n, err := s.ensureAndNotify(ctx, task, studentID)
		if err != nil {
			return created, err
		}
		created += n
	}

	return created, nil
}

func (s *taskService) ensureAndNotify(ctx context.Context, task *model.Task, studentID string) (int, error) {
	_, isNew, err := s.assignmentSvc.Ensure(ctx, task.TaskID, studentID)
	if err != nil {
		return 0, err
	}
	if !isNew {
		return 0, nil
	}
	err = s.repo.Notification.Create(ctx, &model.Notification{
		UserID:  studentID,
		Title:   "新任务分配",
		Message: newTaskMessage(task),
		Type:    "task",
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *taskService) Get(ctx context.Context, actor Actor, taskID string) (*dto.TaskResponse, error) {
	task, err := s.repo.Task.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) List(ctx context.Context, actor Actor, page *dto.PaginationRequest) ([]dto.TaskWithCountsResponse, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, ErrAccessDenied
	}

	items, total, err := s.repo.Task.ListWithCounts(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.TaskWithCountsResponse, 0, len(items))
	for i := range items {
		result = append(result, dto.TaskWithCountsResponse{
			TaskResponse:    *toTaskResponse(&items[i].Task),
			AssignmentCount: items[i].Total,
			CompletedCount:  items[i].Completed,
		})
	}
	return result, total, nil
}

func (s *taskService) Update(ctx context.Context, actor Actor, taskID string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	task, err := s.repo.Task.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Deadline != nil {
		task.Deadline = *req.Deadline
	}
	if req.Priority != "" {
		p := model.Priority(req.Priority)
		if !p.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = p
	}
	if req.Instructions != nil {
		task.Instructions = *req.Instructions
	}
	if req.AssignedTeacherID != nil {
		task.AssignedTeacherID = req.AssignedTeacherID
	}

	// 以请求携带的 version 为准做乐观锁比对
	task.Version = req.Version
	if err := s.repo.Task.Update(ctx, task); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, actor Actor, taskID string) error {
	if actor.Role != model.RoleAdmin {
		return ErrAccessDenied
	}

	task, err := s.repo.Task.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	// 显式级联：提交 → 个人任务 → 任务本体，不留孤儿
	assignments, err := s.repo.Assignment.ListByTask(ctx, taskID)
	if err != nil {
		return err
	}
	if len(assignments) > 0 {
		ids := make([]string, 0, len(assignments))
		for i := range assignments {
			ids = append(ids, assignments[i].AssignmentID)
		}
		if err := s.repo.Submission.DeleteByAssignments(ctx, ids); err != nil {
			return err
		}
	}
	if err := s.repo.Assignment.DeleteByTask(ctx, taskID); err != nil {
		return err
	}
	if err := s.repo.Task.Delete(ctx, taskID); err != nil {
		return err
	}

	s.logger.Info("任务删除完成",
		zap.String("task_id", task.TaskID),
		zap.Int("assignments_removed", len(assignments)),
	)
	return nil
}

func (s *taskService) Assign(ctx context.Context, actor Actor, taskID string, req *dto.AssignTaskRequest) (int, error) {
	if !actor.IsStaff() {
		return 0, ErrAccessDenied
	}

	task, err := s.repo.Task.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTaskNotFound
		}
		return 0, err
	}

	return s.distribute(ctx, task, req.ClassIDs, req.StudentIDs)
}

func (s *taskService) SuggestPriority(ctx context.Context, text string) string {
	return string(SuggestPriority(text))
}

func (s *taskService) OpenFile(ctx context.Context, actor Actor, taskID string) (io.ReadCloser, string, error) {
	task, err := s.repo.Task.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrTaskNotFound
		}
		return nil, "", err
	}

	// 学生仅在持有该任务的分配记录时可下载附件
	if actor.Role == model.RoleStudent {
		if _, err := s.repo.Assignment.GetByTaskAndStudent(ctx, taskID, actor.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrAccessDenied
			}
			return nil, "", err
		}
	}

	if task.FileToken == nil {
		return nil, "", ErrTaskNotFound
	}
	rc, err := s.store.Open(ctx, *task.FileToken)
	if err != nil {
		return nil, "", err
	}
	return rc, *task.FileToken, nil
}

func newTaskMessage(task *model.Task) string {
	return "你收到了新任务：「" + task.Title + "」，截止时间：" + task.Deadline.Format("2006-01-02 15:04")
}

func toTaskResponse(t *model.Task) *dto.TaskResponse {
	resp := &dto.TaskResponse{
		ID:           t.TaskID,
		Title:        t.Title,
		Description:  t.Description,
		Deadline:     t.Deadline,
		Priority:     string(t.Priority),
		Instructions: t.Instructions,
		HasFile:      t.FileToken != nil,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
	}
	if t.AssignedTeacherID != nil {
		resp.AssignedTeacherID = *t.AssignedTeacherID
	}
	for _, c := range t.Classes {
		resp.ClassIDs = append(resp.ClassIDs, c.ClassID)
	}
	return resp
}
