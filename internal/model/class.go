package model

// Class 班级表 — 对应 classes
type Class struct {
	ClassID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Description string  `gorm:"type:text;not null;default:''"                  json:"description"`
	CreatedBy   *string `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	BaseModel

	// 关联
	Students []User    `gorm:"foreignKey:ClassID;references:ClassID"  json:"students,omitempty"`
	Subjects []Subject `gorm:"many2many:class_subjects;foreignKey:ClassID;joinForeignKey:ClassID;References:SubjectID;joinReferences:SubjectID" json:"subjects,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }
