package model

import "time"

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string     `gorm:"type:text;not null"                             json:"message"`
	Type           string     `gorm:"type:varchar(50);not null;default:'info'"       json:"type"` // info | success | warning | error | task
	IsRead         bool       `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// IsExpired 判断通知是否已过期
func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}
