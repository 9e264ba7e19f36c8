package dto

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Role    string         `json:"role"`
	Subject string         `json:"subject,omitempty"`
	Class   *ClassResponse `json:"class,omitempty"`
}

// UpdateUserRequest 管理员/本人更新用户请求
type UpdateUserRequest struct {
	Name        string  `json:"name"         binding:"omitempty,max=100"`
	Email       string  `json:"email"        binding:"omitempty,email"`
	ClassID     *string `json:"class_id"     binding:"omitempty,uuid"`
	Subject     *string `json:"subject"      binding:"omitempty,max=100"`
	NewPassword string  `json:"new_password" binding:"omitempty,min=8"`
}

// StudentProgress 教师视角的学生完成情况
type StudentProgress struct {
	Student        UserResponse `json:"student"`
	TotalTasks     int          `json:"total_tasks"`
	CompletedTasks int          `json:"completed_tasks"`
	InProgress     int          `json:"in_progress_tasks"`
	OverdueTasks   int          `json:"overdue_tasks"`
	CompletionRate float64      `json:"completion_rate"`
}

// OverviewStats 管理员总览统计
type OverviewStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalTeachers        int64 `json:"total_teachers"`
	TotalStudents        int64 `json:"total_students"`
	TotalClasses         int64 `json:"total_classes"`
	TotalTasks           int64 `json:"total_tasks"`
	TotalAssignments     int64 `json:"total_assignments"`
	TotalSubmissions     int64 `json:"total_submissions"`
	CompletedAssignments int64 `json:"completed_assignments"`
	OverdueTasks         int64 `json:"overdue_tasks"`
}
