package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationCompany NotificationType = "company"
	NotificationProduct NotificationType = "product"
	NotificationWebsite NotificationType = "website"
	NotificationSystem  NotificationType = "system"
)

type UserNotification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	ActionURL *string          `json:"action_url"`
	EntityID  *string          `json:"entity_id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NotificationTypeFor maps a followed entity type to the notification type
// used when its followers are notified.
func NotificationTypeFor(entity EntityType) NotificationType {
	switch entity {
	case EntityCompany:
		return NotificationCompany
	case EntityProduct:
		return NotificationProduct
	case EntityWebsite:
		return NotificationWebsite
	default:
		return NotificationSystem
	}
}
