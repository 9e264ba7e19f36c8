package model

// Subject 科目表 — 对应 subjects
type Subject struct {
	SubjectID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Name        string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string  `gorm:"type:text;not null;default:''"                  json:"description"`
	CreatedBy   *string `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	BaseModel

	// 关联
	Classes []Class `gorm:"many2many:class_subjects;foreignKey:SubjectID;joinForeignKey:SubjectID;References:ClassID;joinReferences:ClassID" json:"classes,omitempty"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
