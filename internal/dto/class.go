package dto

// ClassResponse 班级信息响应
type ClassResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	StudentCount int64             `json:"student_count,omitempty"`
	Subjects     []SubjectResponse `json:"subjects,omitempty"`
}

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name        string `json:"name"        binding:"omitempty,max=100"`
	Description string `json:"description" binding:"omitempty"`
}
