package repository

import (
	"context"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/database"
	"heartbridge/internal/models"
)

// StatsRepository computes admin console totals
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountAll returns row totals for each domain table
func (r *StatsRepository) CountAll(ctx context.Context) (*models.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM posts) AS posts,
			(SELECT COUNT(*) FROM comments) AS comments,
			(SELECT COUNT(*) FROM likes) AS likes,
			(SELECT COUNT(*) FROM admin_requests WHERE status = ?) AS pending_requests
	`
	stats := &models.Stats{}
	if err := r.db.GetContext(ctx, stats, query, models.StatusPending); err != nil {
		return nil, apperrors.Storage("failed to count totals", err)
	}
	return stats, nil
}
