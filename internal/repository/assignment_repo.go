package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
)

// AssignmentRepository 个人任务记录数据访问接口
type AssignmentRepository interface {
	// Ensure 以冲突忽略方式插入，返回是否新建。
	// 依赖 (task_id, student_id) 唯一约束，存在检查与插入为单条原子语句。
	Ensure(ctx context.Context, assignment *model.Assignment) (created bool, err error)
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	GetByTaskAndStudent(ctx context.Context, taskID, studentID string) (*model.Assignment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Assignment, error)
	ListByTask(ctx context.Context, taskID string) ([]model.Assignment, error)
	StudentIDsByTask(ctx context.Context, taskID string) ([]string, error)
	UpdateStatus(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string) error
	DeleteByTask(ctx context.Context, taskID string) error
	DeleteByStudent(ctx context.Context, studentID string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.AssignmentStatus) (int64, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Ensure(ctx context.Context, assignment *model.Assignment) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(assignment)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// 冲突被吸收：读回已存在的记录
	existing, err := r.GetByTaskAndStudent(ctx, assignment.TaskID, assignment.StudentID)
	if err != nil {
		return false, err
	}
	*assignment = *existing
	return false, nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Task").
		Preload("Student").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) GetByTaskAndStudent(ctx context.Context, taskID, studentID string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Task").
		Where("student_id = ?", studentID).
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListByTask(ctx context.Context, taskID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("task_id = ?", taskID).
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) StudentIDsByTask(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("task_id = ?", taskID).
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *assignmentRepo) UpdateStatus(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", assignment.AssignmentID).
		Updates(map[string]interface{}{
			"status":       assignment.Status,
			"submitted_at": assignment.SubmittedAt,
		}).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) DeleteByTask(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Assignment{}).Count(&n).Error
	return n, err
}

func (r *assignmentRepo) CountByStatus(ctx context.Context, status model.AssignmentStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
