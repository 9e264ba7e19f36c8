package handler

import "github.com/alainmurenzi/smart-edu-task-manager/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Class        *ClassHandler
	Subject      *SubjectHandler
	Task         *TaskHandler
	Assignment   *AssignmentHandler
	Notification *NotificationHandler
	Export       *ExportHandler
	Stats        *StatsHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Class:        NewClassHandler(svc.Class),
		Subject:      NewSubjectHandler(svc.Subject),
		Task:         NewTaskHandler(svc.Task, svc.Assignment),
		Assignment:   NewAssignmentHandler(svc.Assignment, svc.Submission, svc.Export),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
		Stats:        NewStatsHandler(svc.Stats),
	}
}
