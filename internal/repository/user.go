package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"habit-cheer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	batchJSON, err := json.Marshal(user.BatchTimes)
	if err != nil {
		return fmt.Errorf("failed to marshal batch times: %w", err)
	}

	query := `
		INSERT INTO users (id, push_token, quiet_hours_enabled, quiet_hours_start,
			quiet_hours_end, notification_mode, batch_times, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		user.ID, user.PushToken, user.QuietHoursEnabled, user.QuietHoursStart,
		user.QuietHoursEnd, user.NotificationMode, batchJSON, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Returns nil when no such user exists —
// callers treat a missing recipient as "cannot receive notifications".
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, push_token, quiet_hours_enabled, quiet_hours_start,
			quiet_hours_end, notification_mode, batch_times, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	var batchJSON []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.PushToken, &user.QuietHoursEnabled, &user.QuietHoursStart,
		&user.QuietHoursEnd, &user.NotificationMode, &batchJSON, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := json.Unmarshal(batchJSON, &user.BatchTimes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch times: %w", err)
	}
	return &user, nil
}

// UpdatePushToken sets or clears a user's push token
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, token *string) error {
	query := `UPDATE users SET push_token = $2 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// UpdateNotificationSettings updates a user's quiet hours and delivery mode
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, user *models.User) error {
	batchJSON, err := json.Marshal(user.BatchTimes)
	if err != nil {
		return fmt.Errorf("failed to marshal batch times: %w", err)
	}

	query := `
		UPDATE users
		SET quiet_hours_enabled = $2, quiet_hours_start = $3, quiet_hours_end = $4,
			notification_mode = $5, batch_times = $6
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		user.ID, user.QuietHoursEnabled, user.QuietHoursStart, user.QuietHoursEnd,
		user.NotificationMode, batchJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
