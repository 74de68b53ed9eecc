package repositories

import (
	"context"

	"github.com/google/uuid"
	"toppharma/internal/domain/models"
)

// UserPreferencesRepository defines data access for user preferences
type UserPreferencesRepository interface {
	// GetByUserID returns nil, nil when the user has no stored preferences
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)
	Upsert(ctx context.Context, prefs *models.UserPreferences) error
}

// FollowRepository defines data access for user_followed_entities
type FollowRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserFollowedEntity, error)
	// Create returns a *domain.ConflictError when the user already follows the entity
	Create(ctx context.Context, follow *models.UserFollowedEntity) error
	Get(ctx context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) (*models.UserFollowedEntity, error)
	Delete(ctx context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) error
	// ListFollowers returns user IDs following the entity with notify_changes set
	ListFollowers(ctx context.Context, entityType models.EntityType, entityID string) ([]uuid.UUID, error)
}

// NotificationRepository defines data access for user_notifications
type NotificationRepository interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.UserNotification, error)
	Create(ctx context.Context, n *models.UserNotification) error
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ImportHistoryRepository defines data access for import_history
type ImportHistoryRepository interface {
	Create(ctx context.Context, entry *models.ImportHistoryEntry) error
	Update(ctx context.Context, entry *models.ImportHistoryEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ImportHistoryEntry, error)
	List(ctx context.Context, limit int) ([]models.ImportHistoryEntry, error)
}
