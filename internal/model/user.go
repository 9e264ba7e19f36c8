package model

// Role 用户角色，闭合集合
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User 用户表 — 对应 users
// Subject 仅教师填写（自由文本），ClassID 仅学生填写
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role    `gorm:"type:varchar(20);not null"                      json:"role"`
	Subject      *string `gorm:"type:varchar(100)"                              json:"subject,omitempty"`
	ClassID      *string `gorm:"type:uuid"                                      json:"class_id,omitempty"`
	BaseModel

	// 关联
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
