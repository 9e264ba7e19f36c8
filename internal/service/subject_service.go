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

// SubjectService 科目与授课关系管理
//
// 授课关系只落一张三元表（教师-班级-科目），二元视图按需投影。
type SubjectService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	Get(ctx context.Context, subjectID string) (*dto.SubjectResponse, error)
	List(ctx context.Context) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, actor Actor, subjectID string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, actor Actor, subjectID string) error
	// AssignTeacher 写入 (teacher, class, subject) 三元事实，幂等
	AssignTeacher(ctx context.Context, actor Actor, classID, subjectID, teacherID string) error
	RemoveTeacher(ctx context.Context, actor Actor, classID, subjectID, teacherID string) error
	ListTeaching(ctx context.Context, actor Actor, teacherID string) ([]dto.TeachingResponse, error)
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

func (s *subjectService) Create(ctx context.Context, actor Actor, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	if _, err := s.repo.Class.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	subject := &model.Subject{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   &actor.UserID,
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		return nil, err
	}
	if err := s.repo.Subject.AttachClass(ctx, subject.SubjectID, req.ClassID); err != nil {
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

func (s *subjectService) Get(ctx context.Context, subjectID string) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

func (s *subjectService) List(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

func (s *subjectService) Update(ctx context.Context, actor Actor, subjectID string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		subject.Name = req.Name
	}
	if req.Description != "" {
		subject.Description = req.Description
	}
	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		return nil, err
	}

	if req.ClassID != nil {
		if _, err := s.repo.Class.GetByID(ctx, *req.ClassID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClassNotFound
			}
			return nil, err
		}
		if err := s.repo.Subject.AttachClass(ctx, subjectID, *req.ClassID); err != nil {
			return nil, err
		}
	}
	return toSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, actor Actor, subjectID string) error {
	if actor.Role != model.RoleAdmin {
		return ErrAccessDenied
	}

	if _, err := s.repo.Subject.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}

	count, err := s.repo.Subject.CountClasses(ctx, subjectID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSubjectInUse
	}

	return s.repo.Subject.Delete(ctx, subjectID)
}

func (s *subjectService) AssignTeacher(ctx context.Context, actor Actor, classID, subjectID, teacherID string) error {
	if actor.Role != model.RoleAdmin {
		return ErrAccessDenied
	}

	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if teacher.Role != model.RoleTeacher {
		return ErrNotTeacher
	}

	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	// 科目必须已挂在该班级下
	subjects, err := s.repo.Subject.ListByClass(ctx, classID)
	if err != nil {
		return err
	}
	found := false
	for i := range subjects {
		if subjects[i].SubjectID == subjectID {
			found = true
			break
		}
	}
	if !found {
		return ErrSubjectNotInClass
	}

	return s.repo.Teaching.Add(ctx, &model.TeachingAssignment{
		TeacherID: teacherID,
		ClassID:   classID,
		SubjectID: subjectID,
	})
}

func (s *subjectService) RemoveTeacher(ctx context.Context, actor Actor, classID, subjectID, teacherID string) error {
	if actor.Role != model.RoleAdmin {
		return ErrAccessDenied
	}
	return s.repo.Teaching.Remove(ctx, teacherID, classID, subjectID)
}

func (s *subjectService) ListTeaching(ctx context.Context, actor Actor, teacherID string) ([]dto.TeachingResponse, error) {
	// 教师只能查自己的授课关系
	if actor.Role == model.RoleTeacher && actor.UserID != teacherID {
		return nil, ErrAccessDenied
	}
	if actor.Role == model.RoleStudent {
		return nil, ErrAccessDenied
	}

	items, err := s.repo.Teaching.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.TeachingResponse, 0, len(items))
	for i := range items {
		r := dto.TeachingResponse{
			TeacherID: items[i].TeacherID,
			ClassID:   items[i].ClassID,
			SubjectID: items[i].SubjectID,
		}
		if items[i].Teacher != nil {
			r.Teacher = items[i].Teacher.Name
		}
		if items[i].Class != nil {
			r.Class = items[i].Class.Name
		}
		if items[i].Subject != nil {
			r.Subject = items[i].Subject.Name
		}
		result = append(result, r)
	}
	return result, nil
}

func toSubjectResponse(subject *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:          subject.SubjectID,
		Name:        subject.Name,
		Description: subject.Description,
	}
}
