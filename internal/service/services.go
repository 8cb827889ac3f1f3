package service

import "time"

// Options configures the service bundle
type Options struct {
	SessionDuration time.Duration
	// Notifier receives admin request events; nil disables notifications
	Notifier Notifier
	// HostStats feeds the admin dashboard; nil reports table totals only
	HostStats HostStatsReader
	// DisableModeration skips the bad word filter
	DisableModeration bool
}

// Services is the domain layer shared by the HTML and JSON callers
type Services struct {
	Auth  *AuthService
	Posts *PostService
	Likes *LikeService
	Admin *AdminService
	Stats *StatsService
}

// New wires every domain service over one store
func New(store Store, opts Options) *Services {
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = 24 * time.Hour
	}

	var filter WordFilter = store
	if opts.DisableModeration {
		filter = nil
	}

	stats := NewStatsService(store, opts.HostStats)
	return &Services{
		Auth:  NewAuthService(store, store, opts.SessionDuration),
		Posts: NewPostService(store, store, store, filter),
		Likes: NewLikeService(store, store),
		Admin: NewAdminService(store, store, stats, opts.Notifier),
		Stats: stats,
	}
}
