package service

import (
	"context"
	"time"

	"heartbridge/internal/logger"
	"heartbridge/internal/models"
	"heartbridge/internal/validation"
)

// AdminService runs the admin-elevation workflow and the admin console
type AdminService struct {
	users    CredentialStore
	requests AdminRequestStore
	stats    *StatsService
	notifier Notifier
	locks    *keyedMutex
	now      func() time.Time
}

// NewAdminService creates a new admin service. notifier may be nil.
func NewAdminService(users CredentialStore, requests AdminRequestStore, stats *StatsService, notifier Notifier) *AdminService {
	return &AdminService{
		users:    users,
		requests: requests,
		stats:    stats,
		notifier: notifier,
		locks:    newKeyedMutex(),
		now:      utcNow,
	}
}

// RequestAdmin files a pending request for actor. It returns false with the
// existing request when one is already pending.
func (s *AdminService) RequestAdmin(ctx context.Context, actor string) (bool, *models.AdminRequest, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return false, nil, err
	}

	unlock := s.locks.Lock(user.Nickname)
	defer unlock()

	req, created, err := s.requests.CreatePendingRequest(ctx, user.Nickname, s.now())
	if err != nil {
		return false, nil, err
	}
	if !created {
		return false, req, nil
	}

	logger.Info().Int64("request_id", req.ID).Str("nickname", req.Nickname).Msg("Admin request created")
	if s.notifier != nil {
		if err := s.notifier.NotifyAdminRequest(ctx, req); err != nil {
			logger.Warn().Err(err).Int64("request_id", req.ID).Msg("Failed to send admin request notification")
		}
	}
	return true, req, nil
}

// ProcessRequest approves or rejects a pending request. Approval grants admin
// to the requester atomically.
func (s *AdminService) ProcessRequest(ctx context.Context, actor string, id int64, decision models.RequestStatus) (*models.AdminRequest, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(user); err != nil {
		return nil, err
	}
	if !decision.IsDecision() {
		return nil, validation.ValidationError{Field: "decision", Message: "decision must be approved or rejected"}
	}

	req, err := s.requests.DecideRequest(ctx, id, decision, user.Nickname, s.now())
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("request_id", req.ID).
		Str("nickname", req.Nickname).
		Str("status", string(req.Status)).
		Str("reviewer", user.Nickname).
		Msg("Admin request processed")
	return req, nil
}

// PendingRequests lists pending requests oldest first
func (s *AdminService) PendingRequests(ctx context.Context, actor string) ([]models.AdminRequest, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(user); err != nil {
		return nil, err
	}
	return s.requests.ListRequests(ctx, models.StatusPending)
}

// RequestsFor lists actor's own requests, newest first
func (s *AdminService) RequestsFor(ctx context.Context, actor string) ([]models.AdminRequest, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	return s.requests.ListRequestsFor(ctx, user.Nickname)
}

// Users lists every account, oldest first
func (s *AdminService) Users(ctx context.Context, actor string) ([]models.User, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(user); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

// Dashboard returns the admin console statistics
func (s *AdminService) Dashboard(ctx context.Context, actor string) (*models.Stats, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(user); err != nil {
		return nil, err
	}
	return s.stats.Collect(ctx)
}
