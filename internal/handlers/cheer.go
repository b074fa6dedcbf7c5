package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"habit-cheer-backend/internal/middleware"
	"habit-cheer-backend/internal/models"
	"habit-cheer-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CheerHandler handles cheer-related HTTP requests
type CheerHandler struct {
	cheerService      *services.CheerService
	suggestionService *services.SuggestionService
	deliveryService   *services.DeliveryService
}

// NewCheerHandler creates a new cheer handler
func NewCheerHandler(cheerService *services.CheerService, suggestionService *services.SuggestionService, deliveryService *services.DeliveryService) *CheerHandler {
	return &CheerHandler{
		cheerService:      cheerService,
		suggestionService: suggestionService,
		deliveryService:   deliveryService,
	}
}

// GetSuggestions handles GET /api/v1/cheers/suggestions
func (h *CheerHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	suggestions := h.suggestionService.Suggest(ctx, userID)
	if suggestions == nil {
		suggestions = []models.PoolCard{}
	}

	respondJSON(w, suggestions, http.StatusOK)
}

// SendCheerRequest represents the request body for sending a cheer
type SendCheerRequest struct {
	TargetCardID string `json:"target_card_id"`
	Type         string `json:"type"`
}

// SendCheer handles POST /api/v1/cheers
func (h *CheerHandler) SendCheer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req SendCheerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.TargetCardID == "" {
		respondError(w, "target_card_id is required", http.StatusBadRequest)
		return
	}
	switch req.Type {
	case models.ReactionCheer, models.ReactionAmazing, models.ReactionSupport:
	default:
		respondError(w, "type must be cheer, amazing or support", http.StatusBadRequest)
		return
	}

	reaction, err := h.cheerService.Send(ctx, userID, req.TargetCardID, req.Type)
	if err != nil {
		if errors.Is(err, services.ErrDailyLimitReached) {
			respondErrorCode(w, "daily cheer limit reached", services.ErrDailyLimitReached.Error(), http.StatusTooManyRequests)
			return
		}
		if errors.Is(err, services.ErrAlreadySentToday) {
			respondErrorCode(w, "already cheered this card today", services.ErrAlreadySentToday.Error(), http.StatusConflict)
			return
		}

		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("target_card_id", req.TargetCardID).
			Msg("Failed to send cheer")
		respondError(w, "failed to send cheer", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("reaction_id", reaction.ID).
		Str("type", reaction.Type).
		Msg("Cheer sent")

	// The delivery decision is a fire-and-forget reaction to the new record;
	// it must not block or fail the send response.
	go h.deliveryService.HandleCreated(context.WithoutCancel(ctx), reaction)

	respondJSON(w, reaction, http.StatusCreated)
}

// UndoCheer handles DELETE /api/v1/cheers/{reaction_id}
func (h *CheerHandler) UndoCheer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	reactionID := chi.URLParam(r, "reaction_id")

	if reactionID == "" {
		respondError(w, "reaction_id is required", http.StatusBadRequest)
		return
	}

	reaction, err := h.cheerService.GetReaction(ctx, reactionID)
	if err != nil {
		respondError(w, "reaction not found", http.StatusNotFound)
		return
	}
	if reaction.FromUID != userID {
		respondError(w, "not the sender of this reaction", http.StatusForbidden)
		return
	}

	if err := h.cheerService.Undo(ctx, userID, reactionID, reaction.ToCardID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("reaction_id", reactionID).
			Msg("Failed to undo cheer")
		respondError(w, "failed to undo cheer", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("reaction_id", reactionID).
		Msg("Cheer undone")

	w.WriteHeader(http.StatusNoContent)
}

// ListReactions handles GET /api/v1/reactions
func (h *CheerHandler) ListReactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	reactions, err := h.cheerService.ListInbox(ctx, userID, 50)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list reactions")
		respondError(w, "failed to list reactions", http.StatusInternalServerError)
		return
	}
	if reactions == nil {
		reactions = []models.Reaction{}
	}

	respondJSON(w, reactions, http.StatusOK)
}

// MarkReactionRead handles POST /api/v1/reactions/{reaction_id}/read
func (h *CheerHandler) MarkReactionRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	reactionID := chi.URLParam(r, "reaction_id")

	if reactionID == "" {
		respondError(w, "reaction_id is required", http.StatusBadRequest)
		return
	}

	if err := h.cheerService.MarkRead(ctx, reactionID, userID); err != nil {
		respondError(w, "reaction not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
