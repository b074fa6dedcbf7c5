package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"habit-cheer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SendStateRepository handles database operations for per-user cheer send state
type SendStateRepository struct {
	db *pgxpool.Pool
}

// NewSendStateRepository creates a new send state repository
func NewSendStateRepository(db *pgxpool.Pool) *SendStateRepository {
	return &SendStateRepository{db: db}
}

// Get retrieves the send state for a user. Returns nil (not an error) when the
// user has never persisted one — absence means no quota has been used.
func (r *SendStateRepository) Get(ctx context.Context, userID string) (*models.SendState, error) {
	query := `
		SELECT user_id, daily_count, daily_count_date, sent_pairs
		FROM cheer_send_state
		WHERE user_id = $1
	`
	var state models.SendState
	var pairsJSON []byte
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&state.UserID, &state.DailyCount, &state.DailyCountDate, &pairsJSON,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get send state: %w", err)
	}
	if err := json.Unmarshal(pairsJSON, &state.SentPairs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sent pairs: %w", err)
	}
	return &state, nil
}

func upsertSendStateTx(ctx context.Context, tx pgx.Tx, state *models.SendState) error {
	pairsJSON, err := json.Marshal(state.SentPairs)
	if err != nil {
		return fmt.Errorf("failed to marshal sent pairs: %w", err)
	}

	query := `
		INSERT INTO cheer_send_state (user_id, daily_count, daily_count_date, sent_pairs)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET daily_count = $2, daily_count_date = $3, sent_pairs = $4
	`
	if _, err := tx.Exec(ctx, query, state.UserID, state.DailyCount, state.DailyCountDate, pairsJSON); err != nil {
		return fmt.Errorf("failed to upsert send state: %w", err)
	}
	return nil
}
