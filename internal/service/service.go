package service

import (
	"go.uber.org/zap"

	"github.com/alainmurenzi/smart-edu-task-manager/config"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/jwt"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/redis"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/storage"
)

// Actor 当前操作者，显式传入各业务操作，不依赖隐式上下文
type Actor struct {
	UserID  string
	Role    model.Role
	ClassID string // 仅学生非空
}

// IsStaff 教师或管理员
func (a Actor) IsStaff() bool {
	return a.Role == model.RoleTeacher || a.Role == model.RoleAdmin
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Class        ClassService
	Subject      SubjectService
	Task         TaskService
	Assignment   AssignmentService
	Submission   SubmissionService
	Notification NotificationService
	Stats        StatsService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	store storage.FileStore,
	logger *zap.Logger,
) *Service {
	assignmentSvc := NewAssignmentService(repo, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, assignmentSvc, logger),
		User:         NewUserService(repo, logger),
		Class:        NewClassService(repo, logger),
		Subject:      NewSubjectService(repo, logger),
		Task:         NewTaskService(repo, store, assignmentSvc, logger),
		Assignment:   assignmentSvc,
		Submission:   NewSubmissionService(repo, store, logger),
		Notification: NewNotificationService(cfg, repo, logger),
		Stats:        NewStatsService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}
