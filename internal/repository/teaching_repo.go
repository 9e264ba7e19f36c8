package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
)

// TeachingRepository 教师-班级-科目三元事实数据访问接口
// 二元视图（教师的班级/科目）一律从三元表投影派生
type TeachingRepository interface {
	Add(ctx context.Context, ta *model.TeachingAssignment) error
	Remove(ctx context.Context, teacherID, classID, subjectID string) error
	ListByTeacher(ctx context.Context, teacherID string) ([]model.TeachingAssignment, error)
	ListByClassAndSubject(ctx context.Context, classID, subjectID string) ([]model.TeachingAssignment, error)
	// ClassIDsOfTeacher 教师-班级二元投影
	ClassIDsOfTeacher(ctx context.Context, teacherID string) ([]string, error)
	// SubjectIDsOfTeacher 教师-科目二元投影
	SubjectIDsOfTeacher(ctx context.Context, teacherID string) ([]string, error)
	CountByClass(ctx context.Context, classID string) (int64, error)
	RemoveByTeacher(ctx context.Context, teacherID string) error
}

type teachingRepo struct {
	db *gorm.DB
}

// NewTeachingRepo 创建 TeachingRepository 实例
func NewTeachingRepo(db *gorm.DB) TeachingRepository {
	return &teachingRepo{db: db}
}

func (r *teachingRepo) Add(ctx context.Context, ta *model.TeachingAssignment) error {
	// 重复添加视为幂等
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ta).Error
}

func (r *teachingRepo) Remove(ctx context.Context, teacherID, classID, subjectID string) error {
	return r.db.WithContext(ctx).
		Where("teacher_id = ? AND class_id = ? AND subject_id = ?", teacherID, classID, subjectID).
		Delete(&model.TeachingAssignment{}).Error
}

func (r *teachingRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.TeachingAssignment, error) {
	var tas []model.TeachingAssignment
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Subject").
		Where("teacher_id = ?", teacherID).
		Find(&tas).Error
	return tas, err
}

func (r *teachingRepo) ListByClassAndSubject(ctx context.Context, classID, subjectID string) ([]model.TeachingAssignment, error) {
	var tas []model.TeachingAssignment
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("class_id = ? AND subject_id = ?", classID, subjectID).
		Find(&tas).Error
	return tas, err
}

func (r *teachingRepo) ClassIDsOfTeacher(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TeachingAssignment{}).
		Distinct("class_id").
		Where("teacher_id = ?", teacherID).
		Pluck("class_id", &ids).Error
	return ids, err
}

func (r *teachingRepo) SubjectIDsOfTeacher(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TeachingAssignment{}).
		Distinct("subject_id").
		Where("teacher_id = ?", teacherID).
		Pluck("subject_id", &ids).Error
	return ids, err
}

func (r *teachingRepo) CountByClass(ctx context.Context, classID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TeachingAssignment{}).
		Where("class_id = ?", classID).
		Count(&count).Error
	return count, err
}

func (r *teachingRepo) RemoveByTeacher(ctx context.Context, teacherID string) error {
	return r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Delete(&model.TeachingAssignment{}).Error
}
