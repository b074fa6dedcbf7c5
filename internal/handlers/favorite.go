package handlers

import (
	"encoding/json"
	"net/http"

	"habit-cheer-backend/internal/middleware"
	"habit-cheer-backend/internal/models"
	"habit-cheer-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FavoriteHandler handles favorite-related HTTP requests
type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// AddFavoriteRequest represents the request body for pinning a card
type AddFavoriteRequest struct {
	TargetCardID string `json:"target_card_id"`
}

// AddFavorite handles POST /api/v1/favorites
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TargetCardID == "" {
		respondError(w, "target_card_id is required", http.StatusBadRequest)
		return
	}

	favorite, err := h.favoriteService.AddFavorite(ctx, userID, req.TargetCardID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("target_card_id", req.TargetCardID).
			Msg("Failed to add favorite")

		statusCode := http.StatusInternalServerError
		switch err.Error() {
		case "favorite limit reached", "card is already favorited", "cannot favorite your own card":
			statusCode = http.StatusConflict
		}
		respondError(w, err.Error(), statusCode)
		return
	}

	respondJSON(w, favorite, http.StatusCreated)
}

// RemoveFavorite handles DELETE /api/v1/favorites/{favorite_id}
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	favoriteID := chi.URLParam(r, "favorite_id")

	if favoriteID == "" {
		respondError(w, "favorite_id is required", http.StatusBadRequest)
		return
	}

	if err := h.favoriteService.RemoveFavorite(ctx, favoriteID, userID); err != nil {
		respondError(w, "favorite not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFavorites handles GET /api/v1/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	favorites, err := h.favoriteService.ListFavorites(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list favorites")
		respondError(w, "failed to list favorites", http.StatusInternalServerError)
		return
	}
	if favorites == nil {
		favorites = []models.Favorite{}
	}

	respondJSON(w, favorites, http.StatusOK)
}
