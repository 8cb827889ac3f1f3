package repository

import (
	"context"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/database"
)

// BadWordRepository exposes the moderation word list
type BadWordRepository struct {
	db *database.DB
}

// NewBadWordRepository creates a new bad word repository
func NewBadWordRepository(db *database.DB) *BadWordRepository {
	return &BadWordRepository{db: db}
}

// ValidateWords returns the blocked words among words
func (r *BadWordRepository) ValidateWords(ctx context.Context, words []string) ([]string, error) {
	found, err := r.db.ValidateWords(ctx, words)
	if err != nil {
		return nil, apperrors.Storage("failed to check content", err)
	}
	return found, nil
}

// Store bundles the SQL repositories into one value satisfying every store
// interface the service layer consumes
type Store struct {
	*UserRepository
	*PostRepository
	*LikeRepository
	*AdminRequestRepository
	*StatsRepository
	*BadWordRepository
}

// NewStore creates all repositories over db
func NewStore(db *database.DB) *Store {
	return &Store{
		UserRepository:         NewUserRepository(db),
		PostRepository:         NewPostRepository(db),
		LikeRepository:         NewLikeRepository(db),
		AdminRequestRepository: NewAdminRequestRepository(db),
		StatsRepository:        NewStatsRepository(db),
		BadWordRepository:      NewBadWordRepository(db),
	}
}
