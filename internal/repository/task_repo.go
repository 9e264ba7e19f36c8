package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	pkgerrors "github.com/alainmurenzi/smart-edu-task-manager/pkg/errors"
)

// TaskCounts 任务及其分发完成统计
type TaskCounts struct {
	Task      model.Task
	Total     int64
	Completed int64
}

// TaskRepository 任务数据访问接口
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context, offset, limit int) ([]model.Task, int64, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.Task, error)
	// ListByClass 返回指定班级范围内的任务；仅当 after 非零时过滤 deadline > after
	ListByClass(ctx context.Context, classID string, after time.Time) ([]model.Task, error)
	ListWithCounts(ctx context.Context, offset, limit int) ([]TaskCounts, int64, error)
	AddClasses(ctx context.Context, taskID string, classIDs []string) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo 创建 TaskRepository 实例
func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Classes").
		Preload("Creator").
		Where("task_id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) List(ctx context.Context, offset, limit int) ([]model.Task, int64, error) {
	var tasks []model.Task
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Task{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Classes").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepo) ListByCreator(ctx context.Context, creatorID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Classes").
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) ListByClass(ctx context.Context, classID string, after time.Time) ([]model.Task, error) {
	var tasks []model.Task
	db := r.db.WithContext(ctx).
		Joins("JOIN task_classes tc ON tc.task_id = tasks.task_id").
		Where("tc.class_id = ?", classID)
	if !after.IsZero() {
		db = db.Where("tasks.deadline > ?", after)
	}
	err := db.Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) ListWithCounts(ctx context.Context, offset, limit int) ([]TaskCounts, int64, error) {
	tasks, total, err := r.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]TaskCounts, 0, len(tasks))
	for _, task := range tasks {
		var counts struct {
			Total     int64
			Completed int64
		}
		err := r.db.WithContext(ctx).Model(&model.Assignment{}).
			Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'completed') AS completed").
			Where("task_id = ?", task.TaskID).
			Scan(&counts).Error
		if err != nil {
			return nil, 0, err
		}
		result = append(result, TaskCounts{Task: task, Total: counts.Total, Completed: counts.Completed})
	}
	return result, total, nil
}

func (r *taskRepo) AddClasses(ctx context.Context, taskID string, classIDs []string) error {
	// 仅追加，不做隐式移除
	for _, classID := range classIDs {
		err := r.db.WithContext(ctx).
			Exec("INSERT INTO task_classes (task_id, class_id) VALUES (?, ?) ON CONFLICT DO NOTHING", taskID, classID).
			Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *taskRepo) Update(ctx context.Context, task *model.Task) error {
	oldVersion := task.Version
	result := r.db.WithContext(ctx).
		Model(task).
		Where("task_id = ? AND version = ?", task.TaskID, oldVersion).
		Updates(map[string]interface{}{
			"title":               task.Title,
			"description":         task.Description,
			"deadline":            task.Deadline,
			"priority":            task.Priority,
			"instructions":        task.Instructions,
			"file_token":          task.FileToken,
			"assigned_teacher_id": task.AssignedTeacherID,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	task.Version = oldVersion + 1
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("task_id = ?", id).
		Delete(&model.Task{}).Error
}

func (r *taskRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&n).Error
	return n, err
}

func (r *taskRepo) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("deadline < ?", now).
		Count(&n).Error
	return n, err
}
