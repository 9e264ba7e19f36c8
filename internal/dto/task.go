package dto

import "time"

// TaskResponse 任务信息响应
type TaskResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Deadline          time.Time `json:"deadline"`
	Priority          string    `json:"priority"`
	Instructions      string    `json:"instructions,omitempty"`
	HasFile           bool      `json:"has_file"`
	CreatedBy         string    `json:"created_by"`
	AssignedTeacherID string    `json:"assigned_teacher_id,omitempty"`
	ClassIDs          []string  `json:"class_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// TaskWithCountsResponse 任务及分发统计响应（教师/管理员列表）
type TaskWithCountsResponse struct {
	TaskResponse
	AssignmentCount int64 `json:"assignment_count"`
	CompletedCount  int64 `json:"completed_count"`
}

// CreateTaskRequest 创建任务请求
// Priority 省略时由系统根据描述给出建议值
type CreateTaskRequest struct {
	Title             string    `json:"title"        binding:"required,max=200"`
	Description       string    `json:"description"  binding:"required"`
	Deadline          time.Time `json:"deadline"     binding:"required"`
	Priority          string    `json:"priority"     binding:"omitempty"`
	Instructions      string    `json:"instructions" binding:"omitempty"`
	AssignedTeacherID string    `json:"assigned_teacher_id" binding:"omitempty,uuid"`
	ClassIDs          []string  `json:"class_ids"    binding:"omitempty,dive,uuid"`
	StudentIDs        []string  `json:"student_ids"  binding:"omitempty,dive,uuid"`
}

// UpdateTaskRequest 管理编辑任务请求（乐观锁）
type UpdateTaskRequest struct {
	Title             string     `json:"title"        binding:"omitempty,max=200"`
	Description       string     `json:"description"  binding:"omitempty"`
	Deadline          *time.Time `json:"deadline"     binding:"omitempty"`
	Priority          string     `json:"priority"     binding:"omitempty"`
	Instructions      *string    `json:"instructions" binding:"omitempty"`
	AssignedTeacherID *string    `json:"assigned_teacher_id" binding:"omitempty,uuid"`
	Version           int        `json:"version"      binding:"required,min=1"`
}

// AssignTaskRequest 将已有任务追加分发到指定目标
type AssignTaskRequest struct {
	ClassIDs   []string `json:"class_ids"   binding:"omitempty,dive,uuid"`
	StudentIDs []string `json:"student_ids" binding:"omitempty,dive,uuid"`
}

// SuggestPriorityRequest 优先级建议请求
type SuggestPriorityRequest struct {
	Text string `json:"text" binding:"required"`
}

// SuggestPriorityResponse 优先级建议响应（仅供参考，不强制）
type SuggestPriorityResponse struct {
	Priority string `json:"priority"`
}

// ReassignResponse 补分发结果
type ReassignResponse struct {
	Created int `json:"created"`
}
