package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"heartbridge/internal/database"
	"heartbridge/internal/logger"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version       string               `json:"version"`
	ExportedAt    time.Time            `json:"exported_at"`
	Users         []UserBackup         `json:"users"`
	Posts         []PostBackup         `json:"posts"`
	Comments      []CommentBackup      `json:"comments"`
	Likes         []LikeBackup         `json:"likes"`
	AdminRequests []AdminRequestBackup `json:"admin_requests"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	Nickname     string    `db:"nickname" json:"nickname"`
	PasswordHash string    `db:"password_hash" json:"password_hash"`
	Role         string    `db:"role" json:"role"`
	Avatar       string    `db:"avatar" json:"avatar"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PostBackup represents a post for backup
type PostBackup struct {
	ID        int64     `db:"id" json:"id"`
	Author    string    `db:"author" json:"author"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CommentBackup represents a comment for backup
type CommentBackup struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	Author    string    `db:"author" json:"author"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LikeBackup represents a like for backup
type LikeBackup struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	Nickname  string    `db:"nickname" json:"nickname"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AdminRequestBackup represents an admin request for backup
type AdminRequestBackup struct {
	ID         int64      `db:"id" json:"id"`
	Nickname   string     `db:"nickname" json:"nickname"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ReviewedBy *string    `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	logger.Info().Str("path", outputPath).Msg("Database exported")
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	logger.Info().
		Int("users", len(backup.Users)).
		Int("posts", len(backup.Posts)).
		Int("comments", len(backup.Comments)).
		Int("likes", len(backup.Likes)).
		Int("admin_requests", len(backup.AdminRequests)).
		Msg("Exported records")
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, clear)
}

// ImportFromReader restores a backup in one transaction. With clear set the
// domain tables are emptied first.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	logger.Info().Str("version", backup.Version).Time("exported_at", backup.ExportedAt).Msg("Starting database import")

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if clear {
			if err := clearTables(ctx, tx); err != nil {
				return err
			}
		}
		if err := importUsers(ctx, tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := importPosts(ctx, tx, backup.Posts); err != nil {
			return fmt.Errorf("failed to import posts: %w", err)
		}
		if err := importComments(ctx, tx, backup.Comments); err != nil {
			return fmt.Errorf("failed to import comments: %w", err)
		}
		if err := importLikes(ctx, tx, backup.Likes); err != nil {
			return fmt.Errorf("failed to import likes: %w", err)
		}
		if err := importAdminRequests(ctx, tx, backup.AdminRequests); err != nil {
			return fmt.Errorf("failed to import admin requests: %w", err)
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	logger.Info().Msg("Database import completed successfully")
	return nil
}

func (s *BackupService) snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:       backupVersion,
		ExportedAt:    time.Now().UTC(),
		Users:         []UserBackup{},
		Posts:         []PostBackup{},
		Comments:      []CommentBackup{},
		Likes:         []LikeBackup{},
		AdminRequests: []AdminRequestBackup{},
	}

	exports := []struct {
		name  string
		dest  any
		query string
	}{
		{"users", &backup.Users, "SELECT nickname, password_hash, role, avatar, is_admin, created_at FROM users ORDER BY created_at, nickname"},
		{"posts", &backup.Posts, "SELECT id, author, content, created_at FROM posts ORDER BY id"},
		{"comments", &backup.Comments, "SELECT id, post_id, author, content, created_at FROM comments ORDER BY id"},
		{"likes", &backup.Likes, "SELECT id, post_id, nickname, created_at FROM likes ORDER BY id"},
		{"admin_requests", &backup.AdminRequests, "SELECT id, nickname, status, created_at, reviewed_by, reviewed_at FROM admin_requests ORDER BY id"},
	}
	for _, e := range exports {
		if err := s.db.SelectContext(ctx, e.dest, e.query); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", e.name, err)
		}
	}
	return backup, nil
}

func clearTables(ctx context.Context, tx *database.Tx) error {
	for _, table := range []string{"likes", "comments", "posts", "admin_requests", "sessions", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	logger.Info().Msg("Cleared existing data")
	return nil
}

func importUsers(ctx context.Context, tx *database.Tx, users []UserBackup) error {
	logger.Info().Int("count", len(users)).Msg("Importing users")
	for _, u := range users {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO users (nickname, password_hash, role, avatar, is_admin, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			u.Nickname, u.PasswordHash, u.Role, u.Avatar, u.IsAdmin, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Nickname, err)
		}
	}
	return nil
}

func importPosts(ctx context.Context, tx *database.Tx, posts []PostBackup) error {
	logger.Info().Int("count", len(posts)).Msg("Importing posts")
	for _, p := range posts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO posts (id, author, content, created_at) VALUES (?, ?, ?, ?)",
			p.ID, p.Author, p.Content, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("post %d: %w", p.ID, err)
		}
	}
	return nil
}

func importComments(ctx context.Context, tx *database.Tx, comments []CommentBackup) error {
	logger.Info().Int("count", len(comments)).Msg("Importing comments")
	for _, c := range comments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO comments (id, post_id, author, content, created_at) VALUES (?, ?, ?, ?, ?)",
			c.ID, c.PostID, c.Author, c.Content, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("comment %d: %w", c.ID, err)
		}
	}
	return nil
}

func importLikes(ctx context.Context, tx *database.Tx, likes []LikeBackup) error {
	logger.Info().Int("count", len(likes)).Msg("Importing likes")
	for _, l := range likes {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO likes (id, post_id, nickname, created_at) VALUES (?, ?, ?, ?)",
			l.ID, l.PostID, l.Nickname, l.CreatedAt)
		if err != nil {
			return fmt.Errorf("like %d: %w", l.ID, err)
		}
	}
	return nil
}

func importAdminRequests(ctx context.Context, tx *database.Tx, requests []AdminRequestBackup) error {
	logger.Info().Int("count", len(requests)).Msg("Importing admin requests")
	for _, r := range requests {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO admin_requests (id, nickname, status, created_at, reviewed_by, reviewed_at) VALUES (?, ?, ?, ?, ?, ?)",
			r.ID, r.Nickname, r.Status, r.CreatedAt, r.ReviewedBy, r.ReviewedAt)
		if err != nil {
			return fmt.Errorf("admin request %d: %w", r.ID, err)
		}
	}
	return nil
}

// resetSequences moves PostgreSQL serial counters past the imported ids.
// SQLite and MySQL advance their counters on explicit inserts.
func resetSequences(ctx context.Context, tx *database.Tx) error {
	if tx.GetDialect().SupportsLastInsertId() {
		return nil
	}
	for _, table := range []string{"posts", "comments", "likes", "admin_requests"} {
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s",
			table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
