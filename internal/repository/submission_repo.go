package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
)

// SubmissionRepository 提交记录数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error)
	UpdateFeedback(ctx context.Context, submission *model.Submission) error
	DeleteByAssignments(ctx context.Context, assignmentIDs []string) error
	Count(ctx context.Context) (int64, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Task").
		Where("submission_id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepo) UpdateFeedback(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Updates(map[string]interface{}{
			"score":       submission.Score,
			"feedback":    submission.Feedback,
			"feedback_at": submission.FeedbackAt,
			"graded_by":   submission.GradedBy,
		}).Error
}

func (r *submissionRepo) DeleteByAssignments(ctx context.Context, assignmentIDs []string) error {
	if len(assignmentIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Delete(&model.Submission{}).Error
}

func (r *submissionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Submission{}).Count(&n).Error
	return n, err
}
