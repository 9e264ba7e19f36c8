package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
)

// StatsService 统计汇总
type StatsService interface {
	Overview(ctx context.Context, actor Actor) (*dto.OverviewStats, error)
	// StudentProgress 教师视角：其授课班级（三元表投影）内学生的完成情况
	StudentProgress(ctx context.Context, actor Actor) ([]dto.StudentProgress, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

func (s *statsService) Overview(ctx context.Context, actor Actor) (*dto.OverviewStats, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	stats := &dto.OverviewStats{}
	var err error

	if stats.TotalTeachers, err = s.repo.User.CountByRole(ctx, model.RoleTeacher); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.repo.User.CountByRole(ctx, model.RoleStudent); err != nil {
		return nil, err
	}
	admins, err := s.repo.User.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = stats.TotalTeachers + stats.TotalStudents + admins

	if stats.TotalClasses, err = s.repo.Class.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalTasks, err = s.repo.Task.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalAssignments, err = s.repo.Assignment.Count(ctx); err != nil {
		return nil, err
	}
	if stats.CompletedAssignments, err = s.repo.Assignment.CountByStatus(ctx, model.StatusCompleted); err != nil {
		return nil, err
	}
	if stats.TotalSubmissions, err = s.repo.Submission.Count(ctx); err != nil {
		return nil, err
	}
	if stats.OverdueTasks, err = s.repo.Task.CountOverdue(ctx, time.Now().UTC()); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *statsService) StudentProgress(ctx context.Context, actor Actor) ([]dto.StudentProgress, error) {
	if !actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	var classIDs []string
	var err error
	if actor.Role == model.RoleAdmin {
		classes, err := s.repo.Class.List(ctx)
		if err != nil {
			return nil, err
		}
		for i := range classes {
			classIDs = append(classIDs, classes[i].ClassID)
		}
	} else {
		classIDs, err = s.repo.Teaching.ClassIDsOfTeacher(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
	}

	result := make([]dto.StudentProgress, 0)
	for _, classID := range classIDs {
		students, err := s.repo.User.ListStudentsByClass(ctx, classID)
		if err != nil {
			return nil, err
		}
		for i := range students {
			progress, err := s.studentProgress(ctx, &students[i])
			if err != nil {
				return nil, err
			}
			result = append(result, *progress)
		}
	}
	return result, nil
}

func (s *statsService) studentProgress(ctx context.Context, student *model.User) (*dto.StudentProgress, error) {
	assignments, err := s.repo.Assignment.ListByStudent(ctx, student.UserID)
	if err != nil {
		return nil, err
	}

	p := &dto.StudentProgress{Student: *toUserResponse(student)}
	for i := range assignments {
		p.TotalTasks++
		switch assignments[i].Status {
		case model.StatusCompleted:
			p.CompletedTasks++
		case model.StatusInProgress:
			p.InProgress++
		case model.StatusOverdue:
			p.OverdueTasks++
		}
	}
	if p.TotalTasks > 0 {
		p.CompletionRate = float64(p.CompletedTasks) / float64(p.TotalTasks)
	}
	return p, nil
}
