package model

import "time"

// Priority 任务优先级，闭合的十值枚举
type Priority string

const (
	PriorityUrgentImportant       Priority = "urgent_important"
	PriorityImportantNotUrgent    Priority = "important_not_urgent"
	PriorityUrgentNotImportant    Priority = "urgent_not_important"
	PriorityHigh                  Priority = "high_priority"
	PriorityMedium                Priority = "medium_priority"
	PriorityLow                   Priority = "low_priority"
	PriorityLongTerm              Priority = "long_term"
	PriorityGroupTask             Priority = "group_task"
	PriorityOptional              Priority = "optional"
	PriorityNotImportantNotUrgent Priority = "not_important_not_urgent"
)

// priorityRanks 排序权重，1 为最紧急
var priorityRanks = map[Priority]int{
	PriorityUrgentImportant:       1,
	PriorityImportantNotUrgent:    2,
	PriorityUrgentNotImportant:    3,
	PriorityHigh:                  4,
	PriorityMedium:                5,
	PriorityLow:                   6,
	PriorityLongTerm:              7,
	PriorityGroupTask:             8,
	PriorityOptional:              9,
	PriorityNotImportantNotUrgent: 10,
}

// Rank 返回优先级排序权重，未知值排最后（99）
func (p Priority) Rank() int {
	if r, ok := priorityRanks[p]; ok {
		return r
	}
	return 99
}

// Valid 判断是否为合法枚举值
func (p Priority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Task 任务表 — 对应 tasks
// 创建后除管理员编辑/删除外不可变；编辑使用 version 乐观锁
type Task struct {
	TaskID            string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"task_id"`
	Title             string   `gorm:"type:varchar(200);not null"                     json:"title"`
	Description       string   `gorm:"type:text;not null"                             json:"description"`
	Deadline          time.Time `gorm:"not null"                                      json:"deadline"`
	Priority          Priority `gorm:"type:varchar(50);not null"                      json:"priority"`
	Instructions      string   `gorm:"type:text;not null;default:''"                  json:"instructions"`
	FileToken         *string  `gorm:"type:varchar(500)"                              json:"file_token,omitempty"`
	CreatedBy         string   `gorm:"type:uuid;not null"                             json:"created_by"`
	AssignedTeacherID *string  `gorm:"type:uuid"                                      json:"assigned_teacher_id,omitempty"`
	VersionedModel

	// 关联
	Creator *User   `gorm:"foreignKey:CreatedBy;references:UserID" json:"creator,omitempty"`
	Classes []Class `gorm:"many2many:task_classes;foreignKey:TaskID;joinForeignKey:TaskID;References:ClassID;joinReferences:ClassID" json:"classes,omitempty"`
}

// TableName 指定表名
func (Task) TableName() string { return "tasks" }

// IsOverdue 任务截止时间是否已过
func (t *Task) IsOverdue(now time.Time) bool {
	return now.After(t.Deadline)
}
