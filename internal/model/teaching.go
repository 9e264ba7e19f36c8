package model

import "time"

// TeachingAssignment 教师-班级-科目三元事实 — 对应 teacher_class_subjects
// 本表是授课关系的唯一可信来源：教师-班级、教师-科目两个二元视图
// 均由本表投影派生（SELECT DISTINCT），不单独落库，避免多份簿记漂移。
type TeachingAssignment struct {
	TeacherID string    `gorm:"type:uuid;primaryKey" json:"teacher_id"`
	ClassID   string    `gorm:"type:uuid;primaryKey" json:"class_id"`
	SubjectID string    `gorm:"type:uuid;primaryKey" json:"subject_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	Teacher *User    `gorm:"foreignKey:TeacherID;references:UserID"    json:"teacher,omitempty"`
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (TeachingAssignment) TableName() string { return "teacher_class_subjects" }
