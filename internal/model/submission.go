package model

import "time"

// Submission 提交记录表 — 对应 submissions
// 仅追加：同一 Assignment 允许累积多条提交，历史不覆盖
type Submission struct {
	SubmissionID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	AssignmentID string     `gorm:"type:uuid;not null;index"                       json:"assignment_id"`
	Content      string     `gorm:"type:text;not null;default:''"                  json:"content"`
	FileToken    *string    `gorm:"type:varchar(500)"                              json:"file_token,omitempty"`
	SubmittedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	Score        *int       `json:"score,omitempty"`
	Feedback     *string    `gorm:"type:text"                                      json:"feedback,omitempty"`
	FeedbackAt   *time.Time `json:"feedback_at,omitempty"`
	GradedBy     *string    `gorm:"type:uuid"                                      json:"graded_by,omitempty"`

	// 关联
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }
