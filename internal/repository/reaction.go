package repository

import (
	"context"
	"fmt"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReactionRepository handles database operations for reactions
type ReactionRepository struct {
	db *pgxpool.Pool
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *pgxpool.Pool) *ReactionRepository {
	return &ReactionRepository{db: db}
}

const reactionColumns = `id, from_uid, to_uid, to_card_id, type, reason, message,
	card_title, card_category_name, created_at, scheduled_for, delivered, is_read`

func insertReactionTx(ctx context.Context, tx pgx.Tx, reaction *models.Reaction) error {
	query := `
		INSERT INTO reactions (` + reactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.Exec(ctx, query,
		reaction.ID, reaction.FromUID, reaction.ToUID, reaction.ToCardID,
		reaction.Type, reaction.Reason, reaction.Message,
		reaction.CardTitle, reaction.CardCategoryName, reaction.CreatedAt,
		reaction.ScheduledFor, reaction.Delivered, reaction.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reaction: %w", err)
	}
	return nil
}

// Create inserts a reaction outside any send-state bookkeeping (system cheers)
func (r *ReactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertReactionTx(ctx, tx, reaction); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateWithSendState atomically inserts a reaction and upserts the sender's
// send state. Either both writes apply or neither does.
func (r *ReactionRepository) CreateWithSendState(ctx context.Context, reaction *models.Reaction, state *models.SendState) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertReactionTx(ctx, tx, reaction); err != nil {
		return err
	}
	if err := upsertSendStateTx(ctx, tx, state); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteWithSendState atomically deletes a reaction (if it still exists) and
// upserts the sender's rolled-back send state.
func (r *ReactionRepository) DeleteWithSendState(ctx context.Context, reactionID string, state *models.SendState) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reactions WHERE id = $1`, reactionID); err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	if err := upsertSendStateTx(ctx, tx, state); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanReaction(row pgx.Row, reaction *models.Reaction) error {
	return row.Scan(
		&reaction.ID, &reaction.FromUID, &reaction.ToUID, &reaction.ToCardID,
		&reaction.Type, &reaction.Reason, &reaction.Message,
		&reaction.CardTitle, &reaction.CardCategoryName, &reaction.CreatedAt,
		&reaction.ScheduledFor, &reaction.Delivered, &reaction.IsRead,
	)
}

// GetByID retrieves a reaction by ID
func (r *ReactionRepository) GetByID(ctx context.Context, id string) (*models.Reaction, error) {
	query := `SELECT ` + reactionColumns + ` FROM reactions WHERE id = $1`
	var reaction models.Reaction
	if err := scanReaction(r.db.QueryRow(ctx, query, id), &reaction); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("reaction not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return &reaction, nil
}

// ListByRecipient retrieves a user's received reactions, newest first
func (r *ReactionRepository) ListByRecipient(ctx context.Context, toUID string, limit int) ([]models.Reaction, error) {
	query := `
		SELECT ` + reactionColumns + `
		FROM reactions
		WHERE to_uid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, toUID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var reactions []models.Reaction
	for rows.Next() {
		var reaction models.Reaction
		if err := scanReaction(rows, &reaction); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}

// RecentSystemMessages retrieves the messages of a user's most recent
// system-sent reactions, newest first
func (r *ReactionRepository) RecentSystemMessages(ctx context.Context, toUID string, limit int) ([]string, error) {
	query := `
		SELECT message
		FROM reactions
		WHERE to_uid = $1 AND from_uid = $2 AND message IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, toUID, models.SenderSystem, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent system messages: %w", err)
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountSystemForCardSince counts system reactions sent to a card since a cutoff
func (r *ReactionRepository) CountSystemForCardSince(ctx context.Context, cardID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reactions
		WHERE to_card_id = $1 AND from_uid = $2 AND created_at >= $3
	`
	var count int
	if err := r.db.QueryRow(ctx, query, cardID, models.SenderSystem, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count system reactions: %w", err)
	}
	return count, nil
}

// ListDueForDelivery retrieves undelivered reactions whose scheduled time has passed
func (r *ReactionRepository) ListDueForDelivery(ctx context.Context, now time.Time, limit int) ([]models.Reaction, error) {
	query := `
		SELECT ` + reactionColumns + `
		FROM reactions
		WHERE delivered = false AND scheduled_for IS NOT NULL AND scheduled_for <= $1
		ORDER BY scheduled_for
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reactions: %w", err)
	}
	defer rows.Close()

	var reactions []models.Reaction
	for rows.Next() {
		var reaction models.Reaction
		if err := scanReaction(rows, &reaction); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}

// SetScheduledFor stamps a deferred delivery time on a reaction
func (r *ReactionRepository) SetScheduledFor(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE reactions SET scheduled_for = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to set scheduled_for: %w", err)
	}
	return nil
}

// MarkDelivered marks a reaction as delivered
func (r *ReactionRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE reactions SET delivered = true, delivered_at = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark reaction delivered: %w", err)
	}
	return nil
}

// MarkRead marks a reaction as read by its recipient
func (r *ReactionRepository) MarkRead(ctx context.Context, id, toUID string) error {
	query := `UPDATE reactions SET is_read = true WHERE id = $1 AND to_uid = $2`
	result, err := r.db.Exec(ctx, query, id, toUID)
	if err != nil {
		return fmt.Errorf("failed to mark reaction read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("reaction not found")
	}
	return nil
}
