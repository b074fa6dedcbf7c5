package repository

import (
	"context"
	"fmt"

	"habit-cheer-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository handles database operations for favorites
type FavoriteRepository struct {
	db *pgxpool.Pool
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create creates a new favorite
func (r *FavoriteRepository) Create(ctx context.Context, favorite *models.Favorite) error {
	query := `
		INSERT INTO favorites (id, owner_id, target_uid, target_card_id, category_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		favorite.ID, favorite.OwnerID, favorite.TargetUID, favorite.TargetCardID,
		favorite.CategoryID, favorite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	return nil
}

// Delete deletes a favorite owned by the given user
func (r *FavoriteRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM favorites WHERE id = $1 AND owner_id = $2`
	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("favorite not found")
	}
	return nil
}

// ListByOwner retrieves a user's favorites
func (r *FavoriteRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Favorite, error) {
	query := `
		SELECT id, owner_id, target_uid, target_card_id, category_id, created_at
		FROM favorites
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.TargetUID, &f.TargetCardID, &f.CategoryID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// CountByOwner counts a user's favorites
func (r *FavoriteRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT COUNT(*) FROM favorites WHERE owner_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

// Exists checks whether the user already favorited the target card
func (r *FavoriteRepository) Exists(ctx context.Context, ownerID, targetCardID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE owner_id = $1 AND target_card_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, ownerID, targetCardID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check favorite existence: %w", err)
	}
	return exists, nil
}
