package services

import (
	"context"

	"github.com/google/uuid"
	"toppharma/internal/domain/models"
)

// FollowService manages the entities a user follows
type FollowService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.UserFollowedEntity, error)

	// Follow validates that the entity exists and records the follow.
	// Following an entity twice returns the existing follow with created=false.
	Follow(ctx context.Context, userID uuid.UUID, req *models.FollowRequest) (follow *models.UserFollowedEntity, created bool, err error)

	Unfollow(ctx context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) error
}

// NotificationService manages a user's notifications
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.UserNotification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// NotifyFollowers creates a notification for every follower of the entity
	// that asked to be notified of changes. Returns the number created.
	NotifyFollowers(ctx context.Context, entityType models.EntityType, entityID, title, message string, actionURL *string) (int, error)
}
