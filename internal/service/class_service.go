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

// ClassService 班级管理
type ClassService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateClassRequest) (*dto.ClassResponse, error)
	Get(ctx context.Context, classID string) (*dto.ClassResponse, error)
	List(ctx context.Context) ([]dto.ClassResponse, error)
	Update(ctx context.Context, actor Actor, classID string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error)
	Delete(ctx context.Context, actor Actor, classID string) error
	ListStudents(ctx context.Context, actor Actor, classID string) ([]dto.UserResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

func (s *classService) Create(ctx context.Context, actor Actor, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	existing, err := s.repo.Class.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrClassNameExists
	}

	class := &model.Class{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   &actor.UserID,
	}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		return nil, err
	}
	return toClassResponse(class, 0, nil), nil
}

func (s *classService) Get(ctx context.Context, classID string) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	count, err := s.repo.Class.CountStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.Subject.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return toClassResponse(class, count, subjects), nil
}

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.repo.Class.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		count, err := s.repo.Class.CountStudents(ctx, classes[i].ClassID)
		if err != nil {
			return nil, err
		}
		result = append(result, *toClassResponse(&classes[i], count, nil))
	}
	return result, nil
}

func (s *classService) Update(ctx context.Context, actor Actor, classID string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if req.Name != "" && req.Name != class.Name {
		existing, err := s.repo.Class.GetByName(ctx, req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrClassNameExists
		}
		class.Name = req.Name
	}
	if req.Description != "" {
		class.Description = req.Description
	}

	if err := s.repo.Class.Update(ctx, class); err != nil {
		return nil, err
	}
	return toClassResponse(class, 0, nil), nil
}

func (s *classService) Delete(ctx context.Context, actor Actor, classID string) error {
	if actor.Role != model.RoleAdmin {
		return ErrAccessDenied
	}

	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	// 有学生在班或仍有授课关系时拒绝删除，交由管理员先行清理
	studentCount, err := s.repo.Class.CountStudents(ctx, classID)
	if err != nil {
		return err
	}
	if studentCount > 0 {
		return ErrClassNotEmpty
	}
	teachingCount, err := s.repo.Teaching.CountByClass(ctx, classID)
	if err != nil {
		return err
	}
	if teachingCount > 0 {
		return ErrClassNotEmpty
	}

	return s.repo.Class.Delete(ctx, classID)
}

func (s *classService) ListStudents(ctx context.Context, actor Actor, classID string) ([]dto.UserResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	students, err := s.repo.User.ListStudentsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(students))
	for i := range students {
		result = append(result, *toUserResponse(&students[i]))
	}
	return result, nil
}

func toClassResponse(class *model.Class, studentCount int64, subjects []model.Subject) *dto.ClassResponse {
	resp := &dto.ClassResponse{
		ID:           class.ClassID,
		Name:         class.Name,
		Description:  class.Description,
		StudentCount: studentCount,
	}
	for i := range subjects {
		resp.Subjects = append(resp.Subjects, *toSubjectResponse(&subjects[i]))
	}
	return resp
}
