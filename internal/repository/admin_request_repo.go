package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/database"
	"heartbridge/internal/models"
)

const requestColumns = "id, nickname, status, created_at, reviewed_by, reviewed_at"

var errPendingExists = errors.New("pending request exists")

// AdminRequestRepository handles database operations for admin requests
type AdminRequestRepository struct {
	db *database.DB
}

// NewAdminRequestRepository creates a new admin request repository
func NewAdminRequestRepository(db *database.DB) *AdminRequestRepository {
	return &AdminRequestRepository{db: db}
}

// CreatePendingRequest inserts a pending request for nickname unless one is already pending
func (r *AdminRequestRepository) CreatePendingRequest(ctx context.Context, nickname string, now time.Time) (*models.AdminRequest, bool, error) {
	var created *models.AdminRequest
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		existing, err := pendingFor(ctx, tx, nickname)
		if err != nil {
			return err
		}
		if existing != nil {
			created = existing
			return errPendingExists
		}

		id, err := tx.ExecReturningID(ctx,
			"INSERT INTO admin_requests (nickname, status, created_at) VALUES (?, ?, ?)",
			nickname, models.StatusPending, now)
		if err != nil {
			if tx.GetDialect().IsUniqueViolation(err) {
				return errPendingExists
			}
			return apperrors.Storage("failed to create admin request", err)
		}
		created = &models.AdminRequest{ID: id, Nickname: nickname, Status: models.StatusPending, CreatedAt: now}
		return nil
	})

	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, errPendingExists):
		if created == nil {
			// Lost a race against the partial unique index; read the winner
			created, err = pendingFor(ctx, r.db, nickname)
			if err != nil {
				return nil, false, err
			}
		}
		return created, false, nil
	default:
		return nil, false, err
	}
}

// GetRequest retrieves an admin request by ID
func (r *AdminRequestRepository) GetRequest(ctx context.Context, id int64) (*models.AdminRequest, error) {
	req := &models.AdminRequest{}
	err := r.db.GetContext(ctx, req, "SELECT "+requestColumns+" FROM admin_requests WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get admin request", err)
	}
	return req, nil
}

// ListRequests returns requests with the given status, oldest first. Empty status lists all.
func (r *AdminRequestRepository) ListRequests(ctx context.Context, status models.RequestStatus) ([]models.AdminRequest, error) {
	query := "SELECT " + requestColumns + " FROM admin_requests"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at, id"

	requests := []models.AdminRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, apperrors.Storage("failed to list admin requests", err)
	}
	return requests, nil
}

// ListRequestsFor returns a user's requests, newest first
func (r *AdminRequestRepository) ListRequestsFor(ctx context.Context, nickname string) ([]models.AdminRequest, error) {
	requests := []models.AdminRequest{}
	err := r.db.SelectContext(ctx, &requests,
		"SELECT "+requestColumns+" FROM admin_requests WHERE nickname = ? ORDER BY created_at DESC, id DESC", nickname)
	if err != nil {
		return nil, apperrors.Storage("failed to list admin requests", err)
	}
	return requests, nil
}

// DecideRequest records a decision on a pending request. Approval grants admin in the same transaction.
func (r *AdminRequestRepository) DecideRequest(ctx context.Context, id int64, decision models.RequestStatus, reviewer string, now time.Time) (*models.AdminRequest, error) {
	var decided *models.AdminRequest
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		req := &models.AdminRequest{}
		err := tx.GetContext(ctx, req,
			"SELECT "+requestColumns+" FROM admin_requests WHERE id = ?"+tx.GetDialect().LockClause(), id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("admin request")
		}
		if err != nil {
			return apperrors.Storage("failed to get admin request", err)
		}
		if !req.IsPending() {
			return apperrors.ErrRequestAlreadyDecided
		}

		result, err := tx.ExecContext(ctx,
			"UPDATE admin_requests SET status = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ? AND status = ?",
			decision, reviewer, now, id, models.StatusPending)
		if err != nil {
			return apperrors.Storage("failed to update admin request", err)
		}
		if rows, err := result.RowsAffected(); err != nil {
			return apperrors.Storage("failed to read update result", err)
		} else if rows == 0 {
			return apperrors.ErrRequestAlreadyDecided
		}

		if decision == models.StatusApproved {
			if _, err := tx.ExecContext(ctx, "UPDATE users SET is_admin = ? WHERE nickname = ?", true, req.Nickname); err != nil {
				return apperrors.Storage("failed to grant admin", err)
			}
		}

		req.Status = decision
		req.ReviewedBy = &reviewer
		req.ReviewedAt = &now
		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

func pendingFor(ctx context.Context, q database.DBTX, nickname string) (*models.AdminRequest, error) {
	req := &models.AdminRequest{}
	err := q.GetContext(ctx, req,
		"SELECT "+requestColumns+" FROM admin_requests WHERE nickname = ? AND status = ?"+q.GetDialect().LockClause(),
		nickname, models.StatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to look up pending request", err)
	}
	return req, nil
}
