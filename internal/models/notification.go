package models

import "time"

type NotificationType string

const (
	NotificationTypeNewTool NotificationType = "new_tool"
)

type Notification struct {
	ID        string           `json:"id" db:"id"`
	Type      NotificationType `json:"type" db:"notification_type"`
	Message   string           `json:"message" db:"message"`
	ToolID    *string          `json:"toolId,omitempty" db:"tool_id"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	ReadAt    *time.Time       `json:"readAt,omitempty" db:"read_at"`
}
