package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/domain/services"
)

const notificationListLimit = 100

// NotificationService implements services.NotificationService
type NotificationService struct {
	notifications repositories.NotificationRepository
	follows       repositories.FollowRepository
	logger        *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notifications repositories.NotificationRepository,
	follows repositories.FollowRepository,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		follows:       follows,
		logger:        logger,
	}
}

var _ services.NotificationService = (*NotificationService)(nil)

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.UserNotification, error) {
	list, err := s.notifications.List(ctx, userID, unreadOnly, notificationListLimit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.UserNotification{}
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifications.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("notifications marked read", "user_id", userID, "count", n)
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifications.Delete(ctx, userID, id)
}

// NotifyFollowers keeps going when a single insert fails and reports the
// first error alongside the number created.
func (s *NotificationService) NotifyFollowers(ctx context.Context, entityType models.EntityType, entityID, title, message string, actionURL *string) (int, error) {
	if strings.TrimSpace(title) == "" {
		return 0, &domain.ValidationError{Message: "notification title is required"}
	}

	followers, err := s.follows.ListFollowers(ctx, entityType, entityID)
	if err != nil {
		return 0, fmt.Errorf("list followers: %w", err)
	}

	var firstErr error
	created := 0
	now := time.Now()
	for _, userID := range followers {
		n := &models.UserNotification{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      models.NotificationTypeFor(entityType),
			Title:     title,
			Message:   message,
			ActionURL: actionURL,
			EntityID:  &entityID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			s.logger.Warn("create notification failed", "user_id", userID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		created++
	}

	if created > 0 {
		s.logger.Info("followers notified",
			"entity_type", entityType,
			"entity_id", entityID,
			"count", created,
		)
	}
	return created, firstErr
}
