package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"habit-cheer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolRepository handles database operations for matching pools
type PoolRepository struct {
	db *pgxpool.Pool
}

// NewPoolRepository creates a new pool repository
func NewPoolRepository(db *pgxpool.Pool) *PoolRepository {
	return &PoolRepository{db: db}
}

// Upsert replaces the pool snapshot for a category
func (r *PoolRepository) Upsert(ctx context.Context, pool *models.Pool) error {
	cardsJSON, err := json.Marshal(pool.ActiveCards)
	if err != nil {
		return fmt.Errorf("failed to marshal pool cards: %w", err)
	}

	query := `
		INSERT INTO matching_pools (category_id, category_label, active_cards, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (category_id)
		DO UPDATE SET category_label = $2, active_cards = $3, updated_at = $4
	`
	_, err = r.db.Exec(ctx, query, pool.CategoryID, pool.CategoryLabel, cardsJSON, pool.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert pool: %w", err)
	}
	return nil
}

// Get retrieves the pool for a category; returns nil if no pool has been built
func (r *PoolRepository) Get(ctx context.Context, categoryID string) (*models.Pool, error) {
	query := `
		SELECT category_id, category_label, active_cards, updated_at
		FROM matching_pools
		WHERE category_id = $1
	`
	var pool models.Pool
	var cardsJSON []byte
	err := r.db.QueryRow(ctx, query, categoryID).Scan(
		&pool.CategoryID, &pool.CategoryLabel, &cardsJSON, &pool.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	if err := json.Unmarshal(cardsJSON, &pool.ActiveCards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pool cards: %w", err)
	}
	return &pool, nil
}
