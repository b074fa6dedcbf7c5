package handlers

import (
	"encoding/json"
	"net/http"

	"habit-cheer-backend/internal/middleware"
	"habit-cheer-backend/internal/models"
	"habit-cheer-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// CardHandler handles card utility HTTP requests
type CardHandler struct {
	titleCheckService *services.TitleCheckService
}

// NewCardHandler creates a new card handler
func NewCardHandler(titleCheckService *services.TitleCheckService) *CardHandler {
	return &CardHandler{titleCheckService: titleCheckService}
}

// TitleCheckRequest represents the request body for duplicate title detection
type TitleCheckRequest struct {
	Title string `json:"title"`
}

// TitleCheckResponse lists existing cards with near-duplicate titles
type TitleCheckResponse struct {
	Similar []models.Card `json:"similar"`
}

// CheckTitle handles POST /api/v1/cards/title-check
func (h *CardHandler) CheckTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req TitleCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		respondError(w, "title is required", http.StatusBadRequest)
		return
	}

	similar, err := h.titleCheckService.FindSimilar(ctx, userID, req.Title)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to check title")
		respondError(w, "failed to check title", http.StatusInternalServerError)
		return
	}
	if similar == nil {
		similar = []models.Card{}
	}

	respondJSON(w, TitleCheckResponse{Similar: similar}, http.StatusOK)
}
