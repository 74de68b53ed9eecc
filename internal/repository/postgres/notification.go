package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

// PostgresNotificationRepository implements repositories.NotificationRepository.
// Every statement is scoped by user_id so one user can never touch another's rows.
type PostgresNotificationRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

func NewNotificationRepository(config *RepositoryConfig) repositories.NotificationRepository {
	return &PostgresNotificationRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresNotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.UserNotification, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, message, read, action_url, entity_id, created_at, updated_at
		FROM %s
		WHERE user_id = $1 AND ($2 = false OR read = false)
		ORDER BY created_at DESC
		LIMIT $3
	`, r.tables.UserNotifications)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.UserNotification{}
	for rows.Next() {
		var n models.UserNotification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read,
			&n.ActionURL, &n.EntityID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *models.UserNotification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, type, title, message, read, action_url, entity_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.UserNotifications)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	if _, err := executor.Exec(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Read, n.ActionURL, n.EntityID, n.CreatedAt, n.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	query := fmt.Sprintf(`
		UPDATE %s SET read = true, updated_at = $3
		WHERE user_id = $1 AND id = $2
	`, r.tables.UserNotifications)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	tag, err := executor.Exec(ctx, query, userID, id, time.Now())
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("notification not found: %s", id)}
	}
	return nil
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET read = true, updated_at = $2
		WHERE user_id = $1 AND read = false
	`, r.tables.UserNotifications)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return 0, err
	}

	tag, err := executor.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND id = $2", r.tables.UserNotifications)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	tag, err := executor.Exec(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("notification not found: %s", id)}
	}
	return nil
}

func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = $1 AND read = false", r.tables.UserNotifications)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := executor.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}
