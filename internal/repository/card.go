package repository

import (
	"context"
	"fmt"

	"habit-cheer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CardRepository handles database operations for habit cards
type CardRepository struct {
	db *pgxpool.Pool
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, owner_id, category_l1, category_l2, category_l3, title,
	current_streak, total_logs, last_logged_date, visible_for_cheers, visible_for_template, status`

func scanCards(rows pgx.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.CategoryL1, &c.CategoryL2, &c.CategoryL3, &c.Title,
			&c.CurrentStreak, &c.TotalLogs, &c.LastLoggedDate, &c.VisibleForCheers,
			&c.VisibleForTemplate, &c.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	var c models.Card
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.CategoryL1, &c.CategoryL2, &c.CategoryL3, &c.Title,
		&c.CurrentStreak, &c.TotalLogs, &c.LastLoggedDate, &c.VisibleForCheers,
		&c.VisibleForTemplate, &c.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("card not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &c, nil
}

// ListCheerVisibleByCategory retrieves non-archived, cheer-visible cards in an L3 category
func (r *CardRepository) ListCheerVisibleByCategory(ctx context.Context, categoryL3 string) ([]models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE category_l3 = $1 AND visible_for_cheers = true AND status <> $2
	`
	rows, err := r.db.Query(ctx, query, categoryL3, models.CardStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards by category: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

// ListCheerVisibleByOwner retrieves a user's own non-archived, cheer-visible cards
func (r *CardRepository) ListCheerVisibleByOwner(ctx context.Context, ownerID string) ([]models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE owner_id = $1 AND visible_for_cheers = true AND status <> $2
	`
	rows, err := r.db.Query(ctx, query, ownerID, models.CardStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards by owner: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

// ListByOwner retrieves all non-archived cards for a user
func (r *CardRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = $1 AND status <> $2`
	rows, err := r.db.Query(ctx, query, ownerID, models.CardStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards by owner: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

// ListCheerVisible retrieves every non-archived, cheer-visible card
func (r *CardRepository) ListCheerVisible(ctx context.Context) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE visible_for_cheers = true AND status <> $1`
	rows, err := r.db.Query(ctx, query, models.CardStatusArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list cheer-visible cards: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}
