package model

import "time"

// AssignmentStatus 个人任务状态
type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusOverdue    AssignmentStatus = "overdue"
	StatusCompleted  AssignmentStatus = "completed"
)

// Assignment 个人任务记录表 — 对应 assignments
// 同一 (task_id, student_id) 至多一条，由唯一约束兜底
type Assignment struct {
	AssignmentID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	TaskID       string           `gorm:"type:uuid;not null;uniqueIndex:uq_assignments_task_student" json:"task_id"`
	StudentID    string           `gorm:"type:uuid;not null;uniqueIndex:uq_assignments_task_student" json:"student_id"`
	Status       AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	AssignedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"assigned_at"`
	SubmittedAt  *time.Time       `json:"submitted_at,omitempty"`

	// 关联
	Task    *Task `gorm:"foreignKey:TaskID;references:TaskID"     json:"task,omitempty"`
	Student *User `gorm:"foreignKey:StudentID;references:UserID"  json:"student,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }
