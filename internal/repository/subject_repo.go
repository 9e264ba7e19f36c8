package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
)

// SubjectRepository 科目数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
	ListByClass(ctx context.Context, classID string) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id string) error
	AttachClass(ctx context.Context, subjectID, classID string) error
	DetachClass(ctx context.Context, subjectID, classID string) error
	CountClasses(ctx context.Context, subjectID string) (int64, error)
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Preload("Classes").
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Preload("Classes").
		Order("created_at DESC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) ListByClass(ctx context.Context, classID string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Joins("JOIN class_subjects cs ON cs.subject_id = subjects.subject_id").
		Where("cs.class_id = ?", classID).
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

func (r *subjectRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		Delete(&model.Subject{}).Error
}

func (r *subjectRepo) AttachClass(ctx context.Context, subjectID, classID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO class_subjects (class_id, subject_id) VALUES (?, ?) ON CONFLICT DO NOTHING", classID, subjectID).
		Error
}

func (r *subjectRepo) DetachClass(ctx context.Context, subjectID, classID string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM class_subjects WHERE class_id = ? AND subject_id = ?", classID, subjectID).
		Error
}

func (r *subjectRepo) CountClasses(ctx context.Context, subjectID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("class_subjects").
		Where("subject_id = ?", subjectID).
		Count(&n).Error
	return n, err
}
