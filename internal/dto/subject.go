package dto

// SubjectResponse 科目信息响应
type SubjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateSubjectRequest 创建科目请求（同时挂到一个班级）
type CreateSubjectRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty"`
	ClassID     string `json:"class_id"    binding:"required,uuid"`
}

// UpdateSubjectRequest 更新科目请求
type UpdateSubjectRequest struct {
	Name        string  `json:"name"        binding:"omitempty,max=100"`
	Description string  `json:"description" binding:"omitempty"`
	ClassID     *string `json:"class_id"    binding:"omitempty,uuid"`
}

// AssignTeacherRequest 为班级科目指派教师（写入三元事实）
type AssignTeacherRequest struct {
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
}

// TeachingResponse 教师授课关系响应
type TeachingResponse struct {
	TeacherID string `json:"teacher_id"`
	ClassID   string `json:"class_id"`
	SubjectID string `json:"subject_id"`
	Teacher   string `json:"teacher,omitempty"`
	Class     string `json:"class,omitempty"`
	Subject   string `json:"subject,omitempty"`
}
