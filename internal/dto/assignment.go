package dto

import "time"

// AssignmentResponse 个人任务记录响应
type AssignmentResponse struct {
	ID          string        `json:"id"`
	Status      string        `json:"status"`
	AssignedAt  time.Time     `json:"assigned_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	Task        *TaskResponse `json:"task,omitempty"`
	StudentID   string        `json:"student_id"`
}

// SubmitRequest 提交任务请求（multipart 中的文本部分）
type SubmitRequest struct {
	Content string `form:"content" binding:"required"`
}

// SubmissionResponse 提交记录响应
type SubmissionResponse struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	HasFile     bool       `json:"has_file"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Score       *int       `json:"score,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
	FeedbackAt  *time.Time `json:"feedback_at,omitempty"`
}

// FeedbackRequest 教师评分反馈请求
type FeedbackRequest struct {
	Score    int    `json:"score"    binding:"min=0,max=100"`
	Feedback string `json:"feedback" binding:"omitempty"`
}
