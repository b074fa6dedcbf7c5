package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LogRepository handles database operations for habit logs
type LogRepository struct {
	db *pgxpool.Pool
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *pgxpool.Pool) *LogRepository {
	return &LogRepository{db: db}
}

// RecentLogTimes retrieves the most recent log timestamps for a card, newest first
func (r *LogRepository) RecentLogTimes(ctx context.Context, cardID string, limit int) ([]time.Time, error) {
	query := `
		SELECT logged_at
		FROM habit_logs
		WHERE card_id = $1
		ORDER BY logged_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent logs: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan log time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
