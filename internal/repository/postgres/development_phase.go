package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

type PostgresDevelopmentPhaseRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

func NewDevelopmentPhaseRepository(config *RepositoryConfig) repositories.DevelopmentPhaseRepository {
	return &PostgresDevelopmentPhaseRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// List returns phases in pipeline order
func (r *PostgresDevelopmentPhaseRepository) List(ctx context.Context) ([]models.DevelopmentPhase, error) {
	query := fmt.Sprintf(`
		SELECT id, code, name, sort_order, description, created_at, updated_at
		FROM %s
		ORDER BY sort_order, id
	`, r.tables.DevelopmentPhases)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list development phases: %w", err)
	}
	defer rows.Close()

	phases := []models.DevelopmentPhase{}
	for rows.Next() {
		var p models.DevelopmentPhase
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.SortOrder, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan development phase: %w", err)
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}
