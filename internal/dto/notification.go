package dto

import "time"

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// BroadcastRequest 管理员系统广播请求
type BroadcastRequest struct {
	Title   string `json:"title"   binding:"required,max=200"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"    binding:"omitempty,oneof=info success warning error"`
	Target  string `json:"target"  binding:"required,oneof=all teachers students"`
	// ExpiresInHours 调用方覆盖过期时长（小时），缺省时取配置的 broadcast_expiry
	ExpiresInHours int `json:"expires_in_hours" binding:"omitempty,min=1,max=8760"`
}

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	OnlyUnread bool `form:"only_unread"`
}
