package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Quota violations surfaced to the caller of Send. These are expected,
// user-facing conditions; callers match them with errors.Is and must not retry.
var (
	ErrDailyLimitReached = errors.New("DAILY_LIMIT_REACHED")
	ErrAlreadySentToday  = errors.New("ALREADY_SENT_TODAY")
)

// CheerService gates outbound cheer creation behind a daily quota and a
// per-target cooldown, and supports single-step reversal of a send.
type CheerService struct {
	reactions  ReactionStore
	sendState  SendStateStore
	cards      CardStore
	categories CategoryStore
	dailyLimit int
	cooldown   time.Duration
	now        func() time.Time
}

// NewCheerService creates a new cheer service
func NewCheerService(reactions ReactionStore, sendState SendStateStore, cards CardStore, categories CategoryStore, dailyLimit, cooldownHours int) *CheerService {
	return &CheerService{
		reactions:  reactions,
		sendState:  sendState,
		cards:      cards,
		categories: categories,
		dailyLimit: dailyLimit,
		cooldown:   time.Duration(cooldownHours) * time.Hour,
		now:        time.Now,
	}
}

// defaultSendState is the in-memory stand-in for a user who has never sent a
// cheer. It is never persisted on its own — only as part of the first send.
func defaultSendState(userID string) *models.SendState {
	return &models.SendState{UserID: userID, SentPairs: []models.SentPair{}}
}

// hasActiveCooldown reports whether any retained pair still blocks the target
// card. The cooldown is wall-clock duration arithmetic, not calendar-day based.
func hasActiveCooldown(pairs []models.SentPair, targetCardID string, now time.Time, cooldown time.Duration) bool {
	for _, p := range pairs {
		if p.ToCardID == targetCardID && now.Sub(p.SentAt) < cooldown {
			return true
		}
	}
	return false
}

// prunePairs drops pairs older than the cooldown window. Pruning is lazy: it
// only happens on the next send or undo, never eagerly.
func prunePairs(pairs []models.SentPair, now time.Time, cooldown time.Duration) []models.SentPair {
	kept := make([]models.SentPair, 0, len(pairs))
	for _, p := range pairs {
		if now.Sub(p.SentAt) < cooldown {
			kept = append(kept, p)
		}
	}
	return kept
}

// quotaUsedToday reads the daily count, treating a stale date as zero used.
// The stored counter is not reset here; the next send rewrites it.
func quotaUsedToday(state *models.SendState, today string) int {
	if state.DailyCountDate != today {
		return 0
	}
	return state.DailyCount
}

// Send creates a manual reaction to the target card after quota checks, and
// atomically records it against the sender's send state. Returns the created
// reaction so the caller can offer an immediate undo.
//
// The send-state read happens before the transactional write, so two
// concurrent sends from the same user can both pass the quota check. The
// overrun is bounded by the concurrency and is accepted; the transaction only
// guarantees the reaction and the state mutation land together.
func (s *CheerService) Send(ctx context.Context, senderID, targetCardID, reactionType string) (*models.Reaction, error) {
	state, err := s.sendState.Get(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read send state: %w", err)
	}
	if state == nil {
		state = defaultSendState(senderID)
	}

	now := s.now()
	today := now.Format(dateLayout)

	if quotaUsedToday(state, today) >= s.dailyLimit {
		return nil, ErrDailyLimitReached
	}
	if hasActiveCooldown(state.SentPairs, targetCardID, now, s.cooldown) {
		return nil, ErrAlreadySentToday
	}

	card, err := s.cards.GetByID(ctx, targetCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load target card: %w", err)
	}

	// Denormalized at send time on purpose: the reaction keeps displaying the
	// title the sender saw even if the card is renamed later.
	categoryName, err := s.categories.GetLabel(ctx, card.CategoryL3)
	if err != nil {
		log.Warn().Err(err).Str("category", card.CategoryL3).Msg("Falling back to raw category id")
		categoryName = card.CategoryL3
	}

	reaction := &models.Reaction{
		ID:               uuid.New().String(),
		FromUID:          senderID,
		ToUID:            card.OwnerID,
		ToCardID:         targetCardID,
		Type:             reactionType,
		Reason:           models.ReasonManual,
		CardTitle:        card.Title,
		CardCategoryName: categoryName,
		CreatedAt:        now,
		Delivered:        false,
		IsRead:           false,
	}

	updated := &models.SendState{
		UserID:         senderID,
		DailyCount:     quotaUsedToday(state, today) + 1,
		DailyCountDate: today,
		SentPairs:      append(prunePairs(state.SentPairs, now, s.cooldown), models.SentPair{ToCardID: targetCardID, SentAt: now}),
	}

	if err := s.reactions.CreateWithSendState(ctx, reaction, updated); err != nil {
		return nil, fmt.Errorf("failed to record cheer: %w", err)
	}

	return reaction, nil
}

// Undo reverses an immediately preceding send: the reaction is deleted, every
// cooldown pair for the target card is dropped, and the daily count is
// decremented only while the stored date still matches today. It is not a
// general delete-any-reaction operation.
func (s *CheerService) Undo(ctx context.Context, senderID, reactionID, targetCardID string) error {
	state, err := s.sendState.Get(ctx, senderID)
	if err != nil {
		return fmt.Errorf("failed to read send state: %w", err)
	}
	if state == nil {
		state = defaultSendState(senderID)
	}

	now := s.now()
	today := now.Format(dateLayout)

	kept := make([]models.SentPair, 0, len(state.SentPairs))
	for _, p := range state.SentPairs {
		if p.ToCardID == targetCardID {
			continue
		}
		if now.Sub(p.SentAt) >= s.cooldown {
			continue
		}
		kept = append(kept, p)
	}

	count := state.DailyCount
	// Guard against decrementing a counter that has rolled to a new day.
	if state.DailyCountDate == today && count > 0 {
		count--
	}

	updated := &models.SendState{
		UserID:         senderID,
		DailyCount:     count,
		DailyCountDate: state.DailyCountDate,
		SentPairs:      kept,
	}

	if err := s.reactions.DeleteWithSendState(ctx, reactionID, updated); err != nil {
		return fmt.Errorf("failed to undo cheer: %w", err)
	}
	return nil
}

// GetReaction retrieves a reaction by id (used by the undo handler to verify
// ownership and recover the target card)
func (s *CheerService) GetReaction(ctx context.Context, id string) (*models.Reaction, error) {
	return s.reactions.GetByID(ctx, id)
}

// ListInbox retrieves a user's received reactions, newest first
func (s *CheerService) ListInbox(ctx context.Context, userID string, limit int) ([]models.Reaction, error) {
	return s.reactions.ListByRecipient(ctx, userID, limit)
}

// MarkRead marks a received reaction as read
func (s *CheerService) MarkRead(ctx context.Context, reactionID, userID string) error {
	return s.reactions.MarkRead(ctx, reactionID, userID)
}
