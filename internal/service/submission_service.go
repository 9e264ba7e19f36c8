package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/storage"
)

// SubmissionService 提交与批改
type SubmissionService interface {
	// Submit 学生提交：无条件把个人任务置为 completed，逾期提交同样生效。
	// 提交记录仅追加，重复提交不覆盖历史。
	Submit(ctx context.Context, actor Actor, assignmentID string, req *dto.SubmitRequest, fileName string, file io.Reader) (*dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, actor Actor, assignmentID string) ([]dto.SubmissionResponse, error)
	// Feedback 教师/管理员评分反馈
	Feedback(ctx context.Context, actor Actor, submissionID string, req *dto.FeedbackRequest) (*dto.SubmissionResponse, error)
	// OpenFile 打开提交附件，调用方负责 Close
	OpenFile(ctx context.Context, actor Actor, submissionID string) (io.ReadCloser, string, error)
}

type submissionService struct {
	repo   *repository.Repository
	store  storage.FileStore
	logger *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, store storage.FileStore, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, store: store, logger: logger}
}

func (s *submissionService) Submit(ctx context.Context, actor Actor, assignmentID string, req *dto.SubmitRequest, fileName string, file io.Reader) (*dto.SubmissionResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.StudentID != actor.UserID {
		return nil, ErrAccessDenied
	}

	now := time.Now().UTC()
	submission := &model.Submission{
		AssignmentID: assignmentID,
		Content:      req.Content,
		SubmittedAt:  now,
	}
	if file != nil {
		token, err := s.store.Save(ctx, fileName, file)
		if err != nil {
			s.logger.Error("保存提交附件失败", zap.String("filename", fileName), zap.Error(err))
			return nil, err
		}
		submission.FileToken = &token
	}

	if err := s.repo.Submission.Create(ctx, submission); err != nil {
		return nil, err
	}

	// 提交即完成，状态不回头：overdue 状态下提交同样视为完成
	assignment.Status = model.StatusCompleted
	assignment.SubmittedAt = &now
	if err := s.repo.Assignment.UpdateStatus(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info("任务提交完成",
		zap.String("assignment_id", assignmentID),
		zap.String("student_id", actor.UserID),
	)
	return toSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, actor Actor, assignmentID string) ([]dto.SubmissionResponse, error) {
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

	submissions, err := s.repo.Submission.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		result = append(result, *toSubmissionResponse(&submissions[i]))
	}
	return result, nil
}

func (s *submissionService) Feedback(ctx context.Context, actor Actor, submissionID string, req *dto.FeedbackRequest) (*dto.SubmissionResponse, error) {
	if !actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	submission.Score = &req.Score
	submission.Feedback = &req.Feedback
	submission.FeedbackAt = &now
	submission.GradedBy = &actor.UserID
	if err := s.repo.Submission.UpdateFeedback(ctx, submission); err != nil {
		return nil, err
	}
	return toSubmissionResponse(submission), nil
}

func (s *submissionService) OpenFile(ctx context.Context, actor Actor, submissionID string) (io.ReadCloser, string, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSubmissionNotFound
		}
		return nil, "", err
	}
	if actor.Role == model.RoleStudent &&
		(submission.Assignment == nil || submission.Assignment.StudentID != actor.UserID) {
		return nil, "", ErrAccessDenied
	}
	if submission.FileToken == nil {
		return nil, "", ErrSubmissionNotFound
	}
	rc, err := s.store.Open(ctx, *submission.FileToken)
	if err != nil {
		return nil, "", err
	}
	return rc, *submission.FileToken, nil
}

func toSubmissionResponse(submission *model.Submission) *dto.SubmissionResponse {
	resp := &dto.SubmissionResponse{
		ID:          submission.SubmissionID,
		Content:     submission.Content,
		HasFile:     submission.FileToken != nil,
		SubmittedAt: submission.SubmittedAt,
		Score:       submission.Score,
		FeedbackAt:  submission.FeedbackAt,
	}
	if submission.Feedback != nil {
		resp.Feedback = *submission.Feedback
	}
	return resp
}
