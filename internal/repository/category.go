package repository

import (
	"context"
	"fmt"

	"habit-cheer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository handles database operations for habit categories
type CategoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List retrieves all known L3 categories
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, label FROM categories ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Label); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetLabel retrieves the human-readable label for a category
func (r *CategoryRepository) GetLabel(ctx context.Context, id string) (string, error) {
	query := `SELECT label FROM categories WHERE id = $1`
	var label string
	err := r.db.QueryRow(ctx, query, id).Scan(&label)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("category not found: %w", err)
		}
		return "", fmt.Errorf("failed to get category label: %w", err)
	}
	return label, nil
}
