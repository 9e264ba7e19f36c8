package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
)

// AssignmentService 个人任务生命周期与自动分发
//
// 分发共有三个触发点：学生注册、学生仪表盘对账（Reconcile）、显式补分发（Reassign）。
// 三者都经由幂等的 Ensure 落库；仪表盘触发不产生通知，另两者对新建记录逐一通知。
type AssignmentService interface {
	// Ensure 确保 (task, student) 的记录存在，重复调用不产生重复行
	Ensure(ctx context.Context, taskID, studentID string) (*model.Assignment, bool, error)
	Get(ctx context.Context, actor Actor, assignmentID string) (*dto.AssignmentResponse, error)
	// Start pending → in_progress；其余状态下为无操作
	Start(ctx context.Context, actor Actor, assignmentID string) (*dto.AssignmentResponse, error)
	// Reconcile 对账：懒分发班级任务、清理孤儿记录、逾期下沉。
	// 由展示层在学生仪表盘加载时显式调用，查询路径本身保持纯读。
	Reconcile(ctx context.Context, studentID string, now time.Time) error
	// Dashboard 返回按 (优先级, 截止时间) 排序的个人任务列表，纯读
	Dashboard(ctx context.Context, studentID string) ([]dto.AssignmentResponse, error)
	// DistributeOnRegistration 学生注册时为其班级范围内的既有任务补建记录并通知
	DistributeOnRegistration(ctx context.Context, student *model.User) error
	// Reassign 显式补分发：为任务班级内尚无记录的学生补建（无视截止时间）并通知
	Reassign(ctx context.Context, actor Actor, taskID string) (int, error)
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger}
}

// ── Ensure ──

func (s *assignmentService) Ensure(ctx context.Context, taskID, studentID string) (*model.Assignment, bool, error) {
	assignment := &model.Assignment{
		TaskID:     taskID,
		StudentID:  studentID,
		Status:     model.StatusPending,
		AssignedAt: time.Now().UTC(),
	}
	created, err := s.repo.Assignment.Ensure(ctx, assignment)
	if err != nil {
		s.logger.Error("写入个人任务失败",
			zap.String("task_id", taskID),
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return nil, false, err
	}
	return assignment, created, nil
}

// ── Get / Start ──

func (s *assignmentService) Get(ctx context.Context, actor Actor, assignmentID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadOwned(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

func (s *assignmentService) Start(ctx context.Context, actor Actor, assignmentID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadOwned(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	// 仅 pending → in_progress 合法，其余一律无操作
	if assignment.Status == model.StatusPending {
		assignment.Status = model.StatusInProgress
		if err := s.repo.Assignment.UpdateStatus(ctx, assignment); err != nil {
			return nil, err
		}
	}

	return toAssignmentResponse(assignment), nil
}

// loadOwned 加载记录并校验归属：学生只能访问自己的记录，任何副作用之前短路
func (s *assignmentService) loadOwned(ctx context.Context, actor Actor, assignmentID string) (*model.Assignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if actor.Role == model.RoleStudent && assignment.StudentID != actor.UserID {
		return nil, ErrAccessDenied
	}
	return assignment, nil
}

// ── Reconcile ──

func (s *assignmentService) Reconcile(ctx context.Context, studentID string, now time.Time) error {
	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 1. 懒分发：班级范围内截止时间未过的任务，补建缺失记录（不通知）
	if student.ClassID != nil {
		tasks, err := s.repo.Task.ListByClass(ctx, *student.ClassID, now)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if _, _, err := s.Ensure(ctx, task.TaskID, studentID); err != nil {
				return err
			}
		}
	}

	assignments, err := s.repo.Assignment.ListByStudent(ctx, studentID)
	if err != nil {
		return err
	}

	for i := range assignments {
		a := &assignments[i]

		// 2. 任务已被删除：机会式清理孤儿记录（连同提交），不视为错误
		if a.Task == nil {
			if err := s.repo.Submission.DeleteByAssignments(ctx, []string{a.AssignmentID}); err != nil {
				return err
			}
			if err := s.repo.Assignment.Delete(ctx, a.AssignmentID); err != nil {
				return err
			}
			s.logger.Info("清理孤儿个人任务",
				zap.String("assignment_id", a.AssignmentID),
				zap.String("student_id", studentID),
			)
			continue
		}

		// 3. 逾期下沉：仅 pending / in_progress 参与，completed 永不降级
		if a.Task.IsOverdue(now) &&
			(a.Status == model.StatusPending || a.Status == model.StatusInProgress) {
			a.Status = model.StatusOverdue
			if err := s.repo.Assignment.UpdateStatus(ctx, a); err != nil {
				return err
			}
		}
	}

	return nil
}

// ── Dashboard ──

func (s *assignmentService) Dashboard(ctx context.Context, studentID string) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.Assignment.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	// 孤儿记录由 Reconcile 负责清理，这里只做展示过滤；
	// 已逾期的记录照常展示，状态如实呈现
	valid := assignments[:0]
	for _, a := range assignments {
		if a.Task != nil {
			valid = append(valid, a)
		}
	}

	SortAssignments(valid)

	result := make([]dto.AssignmentResponse, 0, len(valid))
	for i := range valid {
		result = append(result, *toAssignmentResponse(&valid[i]))
	}
	return result, nil
}

// ── DistributeOnRegistration ──

func (s *assignmentService) DistributeOnRegistration(ctx context.Context, student *model.User) error {
	if student.ClassID == nil {
		return nil
	}

	// 注册时覆盖班级范围内的全部既有任务，含已过截止时间的
	tasks, err := s.repo.Task.ListByClass(ctx, *student.ClassID, time.Time{})
	if err != nil {
		return err
	}

	for _, task := range tasks {
		_, created, err := s.Ensure(ctx, task.TaskID, student.UserID)
		if err != nil {
			return err
		}
		if created {
			if err := s.notifyAssigned(ctx, student.UserID, &task); err != nil {
				return err
			}
		}
	}
	return nil
}

// ── Reassign ──

func (s *assignmentService) Reassign(ctx context.Context, actor Actor, taskID string) (int, error) {
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

	covered, err := s.repo.Assignment.StudentIDsByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	coveredSet := make(map[string]bool, len(covered))
	for _, id := range covered {
		coveredSet[id] = true
	}

	created := 0
	for _, class := range task.Classes {
		students, err := s.repo.User.ListStudentsByClass(ctx, class.ClassID)
		if err != nil {
			return 0, err
		}
		for i := range students {
			student := &students[i]
			if coveredSet[student.UserID] {
				continue
			}
			_, isNew, err := s.Ensure(ctx, taskID, student.UserID)
			if err != nil {
				return 0, err
			}
			coveredSet[student.UserID] = true
			if !isNew {
				continue
			}
			created++
			if err := s.notifyAssigned(ctx, student.UserID, task); err != nil {
				return 0, err
			}
		}
	}

	s.logger.Info("补分发完成",
		zap.String("task_id", taskID),
		zap.Int("created", created),
	)
	return created, nil
}

// ── 辅助 ──

// notifyAssigned 针对新建的分发记录发送任务通知
func (s *assignmentService) notifyAssigned(ctx context.Context, studentID string, task *model.Task) error {
	return s.repo.Notification.Create(ctx, &model.Notification{
		UserID:  studentID,
		Title:   "新任务分配",
		Message: newTaskMessage(task),
		Type:    "task",
	})
}

func toAssignmentResponse(a *model.Assignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:          a.AssignmentID,
		Status:      string(a.Status),
		AssignedAt:  a.AssignedAt,
		SubmittedAt: a.SubmittedAt,
		StudentID:   a.StudentID,
	}
	if a.Task != nil {
		resp.Task = toTaskResponse(a.Task)
	}
	return resp
}
