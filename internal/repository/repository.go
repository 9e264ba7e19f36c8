package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Class        ClassRepository
	Subject      SubjectRepository
	Teaching     TeachingRepository
	Task         TaskRepository
	Assignment   AssignmentRepository
	Submission   SubmissionRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Class:        NewClassRepo(db),
		Subject:      NewSubjectRepo(db),
		Teaching:     NewTeachingRepo(db),
		Task:         NewTaskRepo(db),
		Assignment:   NewAssignmentRepo(db),
		Submission:   NewSubmissionRepo(db),
		Notification: NewNotificationRepo(db),
	}
}
