package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

const followColumns = `id, user_id, entity_type, entity_id, notify_changes, created_at, updated_at`

// PostgresFollowRepository implements repositories.FollowRepository
type PostgresFollowRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

func NewFollowRepository(config *RepositoryConfig) repositories.FollowRepository {
	return &PostgresFollowRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanFollow(row pgx.Row, f *models.UserFollowedEntity) error {
	return row.Scan(&f.ID, &f.UserID, &f.EntityType, &f.EntityID, &f.NotifyChanges, &f.CreatedAt, &f.UpdatedAt)
}

// ListByUser returns the user's follows, newest first
func (r *PostgresFollowRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserFollowedEntity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, followColumns, r.tables.UserFollows)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	follows := []models.UserFollowedEntity{}
	for rows.Next() {
		var f models.UserFollowedEntity
		if err := scanFollow(rows, &f); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}

// Create inserts a follow. A duplicate (user, type, entity) returns a
// ConflictError carrying the existing follow's ID.
func (r *PostgresFollowRepository) Create(ctx context.Context, f *models.UserFollowedEntity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, entity_type, entity_id, notify_changes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.UserFollows)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	_, err = executor.Exec(ctx, query,
		f.ID, f.UserID, f.EntityType, f.EntityID, f.NotifyChanges, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			existing, getErr := r.Get(ctx, f.UserID, f.EntityType, f.EntityID)
			resourceID := ""
			if getErr == nil {
				resourceID = existing.ID.String()
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("already following %s %s", f.EntityType, f.EntityID),
				ResourceType: "follow",
				ResourceID:   resourceID,
			}
		}
		return fmt.Errorf("create follow: %w", err)
	}
	return nil
}

func (r *PostgresFollowRepository) Get(ctx context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) (*models.UserFollowedEntity, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1 AND entity_type = $2 AND entity_id = $3
	`, followColumns, r.tables.UserFollows)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}

	var f models.UserFollowedEntity
	if err := scanFollow(executor.QueryRow(ctx, query, userID, entityType, entityID), &f); err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("not following %s %s", entityType, entityID)}
		}
		return nil, fmt.Errorf("get follow: %w", err)
	}
	return &f, nil
}

func (r *PostgresFollowRepository) Delete(ctx context.Context, userID uuid.UUID, entityType models.EntityType, entityID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND entity_type = $2 AND entity_id = $3
	`, r.tables.UserFollows)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	tag, err := executor.Exec(ctx, query, userID, entityType, entityID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("not following %s %s", entityType, entityID)}
	}
	return nil
}

// ListFollowers returns the users following an entity with notify_changes set
func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, entityType models.EntityType, entityID string) ([]uuid.UUID, error) {
	query := fmt.Sprintf(`
		SELECT user_id FROM %s
		WHERE entity_type = $1 AND entity_id = $2 AND notify_changes = true
	`, r.tables.UserFollows)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("scan followers: %w", err)
	}
	return ids, nil
}
