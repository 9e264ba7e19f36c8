package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alainmurenzi/smart-edu-task-manager/config"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
)

// NotificationService 站内通知
type NotificationService interface {
	// List 返回未过期的通知，onlyUnread 时进一步过滤已读
	List(ctx context.Context, actor Actor, onlyUnread bool) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
	MarkRead(ctx context.Context, actor Actor, notificationID string) error
	MarkAllRead(ctx context.Context, actor Actor) error
	// Broadcast 管理员按角色群发，带过期时间
	Broadcast(ctx context.Context, actor Actor, req *dto.BroadcastRequest) (int, error)
}

type notificationService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{cfg: cfg, repo: repo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, actor Actor, onlyUnread bool) ([]dto.NotificationResponse, error) {
	items, err := s.repo.Notification.ListByUser(ctx, actor.UserID, time.Now().UTC(), onlyUnread)
	if err != nil {
		return nil, err
	}

	result := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		result = append(result, dto.NotificationResponse{
			ID:        items[i].NotificationID,
			Title:     items[i].Title,
			Message:   items[i].Message,
			Type:      items[i].Type,
			IsRead:    items[i].IsRead,
			CreatedAt: items[i].CreatedAt,
			ExpiresAt: items[i].ExpiresAt,
		})
	}
	return result, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return s.repo.Notification.CountUnread(ctx, actor.UserID, time.Now().UTC())
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, notificationID string) error {
	return s.repo.Notification.MarkRead(ctx, notificationID, actor.UserID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) error {
	return s.repo.Notification.MarkAllRead(ctx, actor.UserID)
}

func (s *notificationService) Broadcast(ctx context.Context, actor Actor, req *dto.BroadcastRequest) (int, error) {
	if actor.Role != model.RoleAdmin {
		return 0, ErrAccessDenied
	}

	var targets []model.User
	switch req.Target {
	case "teachers":
		teachers, err := s.repo.User.ListByRole(ctx, model.RoleTeacher)
		if err != nil {
			return 0, err
		}
		targets = teachers
	case "students":
		students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
		if err != nil {
			return 0, err
		}
		targets = students
	default: // all
		teachers, err := s.repo.User.ListByRole(ctx, model.RoleTeacher)
		if err != nil {
			return 0, err
		}
		students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
		if err != nil {
			return 0, err
		}
		targets = append(teachers, students...)
	}

	if len(targets) == 0 {
		return 0, nil
	}

	notifType := req.Type
	if notifType == "" {
		notifType = "info"
	}
	expiry := s.cfg.Notify.BroadcastExpiry
	if req.ExpiresInHours > 0 {
		expiry = time.Duration(req.ExpiresInHours) * time.Hour
	}
	expiresAt := time.Now().UTC().Add(expiry)

	notifications := make([]model.Notification, 0, len(targets))
	for i := range targets {
		notifications = append(notifications, model.Notification{
			UserID:    targets[i].UserID,
			Title:     req.Title,
			Message:   req.Message,
			Type:      notifType,
			ExpiresAt: &expiresAt,
		})
	}
	if err := s.repo.Notification.BatchCreate(ctx, notifications); err != nil {
		return 0, err
	}

	s.logger.Info("系统广播发送完成",
		zap.String("target", req.Target),
		zap.Int("count", len(notifications)),
	)
	return len(notifications), nil
}
