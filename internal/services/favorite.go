package services

import (
	"context"
	"fmt"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/google/uuid"
)

// maxFavoritesPerUser caps how many cards a user can pin
const maxFavoritesPerUser = 10

// FavoriteService handles pinning other users' cards for priority suggestions
type FavoriteService struct {
	favorites FavoriteStore
	cards     CardStore
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(favorites FavoriteStore, cards CardStore) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		cards:     cards,
	}
}

// AddFavorite pins another user's card. Capped per owner and unique per
// (owner, target card).
func (s *FavoriteService) AddFavorite(ctx context.Context, ownerID, targetCardID string) (*models.Favorite, error) {
	card, err := s.cards.GetByID(ctx, targetCardID)
	if err != nil {
		return nil, fmt.Errorf("target card not found: %w", err)
	}
	if card.OwnerID == ownerID {
		return nil, fmt.Errorf("cannot favorite your own card")
	}

	exists, err := s.favorites.Exists(ctx, ownerID, targetCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing favorite: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("card is already favorited")
	}

	count, err := s.favorites.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	if count >= maxFavoritesPerUser {
		return nil, fmt.Errorf("favorite limit reached")
	}

	favorite := &models.Favorite{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		TargetUID:    card.OwnerID,
		TargetCardID: targetCardID,
		CategoryID:   card.CategoryL3,
		CreatedAt:    time.Now(),
	}
	if err := s.favorites.Create(ctx, favorite); err != nil {
		return nil, fmt.Errorf("failed to create favorite: %w", err)
	}
	return favorite, nil
}

// RemoveFavorite unpins a card
func (s *FavoriteService) RemoveFavorite(ctx context.Context, favoriteID, ownerID string) error {
	if err := s.favorites.Delete(ctx, favoriteID, ownerID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// ListFavorites lists a user's favorites
func (s *FavoriteService) ListFavorites(ctx context.Context, ownerID string) ([]models.Favorite, error) {
	return s.favorites.ListByOwner(ctx, ownerID)
}
