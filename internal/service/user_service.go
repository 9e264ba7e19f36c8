package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
)

// UserService 用户目录管理
type UserService interface {
	Get(ctx context.Context, actor Actor, userID string) (*dto.UserResponse, error)
	List(ctx context.Context, actor Actor, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, actor Actor, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	// Delete 管理员删除用户，显式级联其个人任务、提交、创建的任务与通知
	Delete(ctx context.Context, actor Actor, userID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Get(ctx context.Context, actor Actor, userID string) (*dto.UserResponse, error) {
	// 学生只能查看自己
	if actor.Role == model.RoleStudent && actor.UserID != userID {
		return nil, ErrAccessDenied
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, actor Actor, page *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	if actor.Role != model.RoleAdmin {
		return nil, 0, ErrAccessDenied
	}

	users, total, err := s.repo.User.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) Update(ctx context.Context, actor Actor, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if actor.Role != model.RoleAdmin && actor.UserID != userID {
		return nil, ErrAccessDenied
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		existing, err := s.repo.User.GetByEmail(ctx, req.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailExists
		}
		user.Email = req.Email
	}
	// 班级与科目的归属变更仅管理员可做
	if actor.Role == model.RoleAdmin {
		if req.ClassID != nil && user.Role == model.RoleStudent {
			if _, err := s.repo.Class.GetByID(ctx, *req.ClassID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrClassNotFound
				}
				return nil, err
			}
			user.ClassID = req.ClassID
		}
		if req.Subject != nil && user.Role == model.RoleTeacher {
			user.Subject = req.Subject
		}
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, userID string) error {
	if actor.Role != model.RoleAdmin {
		return ErrAccessDenied
	}
	if actor.UserID == userID {
		return ErrSelfDelete
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 学生侧：个人任务及其提交
	assignments, err := s.repo.Assignment.ListByStudent(ctx, userID)
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
		if err := s.repo.Assignment.DeleteByStudent(ctx, userID); err != nil {
			return err
		}
	}

	// 教师/管理员侧：其创建的任务连同任务的分发与提交一并清理
	tasks, err := s.repo.Task.ListByCreator(ctx, userID)
	if err != nil {
		return err
	}
	for i := range tasks {
		taskAssignments, err := s.repo.Assignment.ListByTask(ctx, tasks[i].TaskID)
		if err != nil {
			return err
		}
		if len(taskAssignments) > 0 {
			ids := make([]string, 0, len(taskAssignments))
			for j := range taskAssignments {
				ids = append(ids, taskAssignments[j].AssignmentID)
			}
			if err := s.repo.Submission.DeleteByAssignments(ctx, ids); err != nil {
				return err
			}
			if err := s.repo.Assignment.DeleteByTask(ctx, tasks[i].TaskID); err != nil {
				return err
			}
		}
		if err := s.repo.Task.Delete(ctx, tasks[i].TaskID); err != nil {
			return err
		}
	}

	// 授课关系与通知
	if user.Role == model.RoleTeacher {
		if err := s.repo.Teaching.RemoveByTeacher(ctx, userID); err != nil {
			return err
		}
	}
	if err := s.repo.Notification.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.User.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("用户删除完成",
		zap.String("user_id", userID),
		zap.String("role", string(user.Role)),
		zap.Int("tasks_removed", len(tasks)),
	)
	return nil
}

func toUserResponse(user *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
	if user.Subject != nil {
		resp.Subject = *user.Subject
	}
	if user.Class != nil {
		resp.Class = &dto.ClassResponse{ID: user.Class.ClassID, Name: user.Class.Name}
	}
	return resp
}
