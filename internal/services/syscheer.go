package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// randomCheerOdds is the 1-in-N chance an otherwise uneventful card gets a
// random encouragement cheer per run
const randomCheerOdds = 20

// SystemCheerService is the scheduled job that sends automated cheers: streak
// records, streak breaks, long absences, and the occasional random boost.
type SystemCheerService struct {
	cards      CardStore
	categories CategoryStore
	reactions  ReactionStore
	selector   *ReactionSelector
	now        func() time.Time
}

// NewSystemCheerService creates a new system cheer service
func NewSystemCheerService(cards CardStore, categories CategoryStore, reactions ReactionStore, selector *ReactionSelector) *SystemCheerService {
	return &SystemCheerService{
		cards:      cards,
		categories: categories,
		reactions:  reactions,
		selector:   selector,
		now:        time.Now,
	}
}

// Run walks every cheer-visible card, derives a sending reason where one
// applies, and creates at most one system reaction per card per day. Failures
// on individual cards are isolated.
func (s *SystemCheerService) Run(ctx context.Context) error {
	cards, err := s.cards.ListCheerVisible(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}

	sent := 0
	for _, card := range cards {
		ok, err := s.cheerCard(ctx, card)
		if err != nil {
			log.Error().Err(err).Str("card_id", card.ID).Msg("Failed to send system cheer")
			continue
		}
		if ok {
			sent++
		}
	}

	log.Info().Int("cards", len(cards)).Int("sent", sent).Msg("System cheer run finished")
	return nil
}

func (s *SystemCheerService) cheerCard(ctx context.Context, card models.Card) (bool, error) {
	now := s.now()
	reason := deriveReason(card, now)
	if reason == "" {
		return false, nil
	}

	// One system cheer per card per day.
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := s.reactions.CountSystemForCardSince(ctx, card.ID, startOfDay)
	if err != nil {
		return false, fmt.Errorf("failed to check today's system cheers: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	reactionType := SelectReactionType(reason)
	message := s.selector.SelectMessage(ctx, card.OwnerID, reason, reactionType)

	categoryName, err := s.categories.GetLabel(ctx, card.CategoryL3)
	if err != nil {
		categoryName = card.CategoryL3
	}

	reaction := &models.Reaction{
		ID:               uuid.New().String(),
		FromUID:          models.SenderSystem,
		ToUID:            card.OwnerID,
		ToCardID:         card.ID,
		Type:             reactionType,
		Reason:           reason,
		Message:          &message,
		CardTitle:        card.Title,
		CardCategoryName: categoryName,
		CreatedAt:        now,
		Delivered:        false,
		IsRead:           false,
	}
	if err := s.reactions.Create(ctx, reaction); err != nil {
		return false, err
	}
	return true, nil
}

// deriveReason maps a card's recent activity to a sending reason, or ""
// when the card warrants no automated cheer this run.
func deriveReason(card models.Card, now time.Time) string {
	if card.LastLoggedDate == "" {
		return ""
	}
	lastLogged, err := time.ParseInLocation(dateLayout, card.LastLoggedDate, now.Location())
	if err != nil {
		return ""
	}

	switch days := calendarDayDiff(lastLogged, now); {
	case days >= 4 && days <= 13:
		return models.ReasonLongAbsence
	case days >= 2 && days <= 3:
		return models.ReasonStreakBreak
	case days <= 1 && card.CurrentStreak > 0 && card.CurrentStreak%7 == 0:
		return models.ReasonRecord
	case days <= 1 && rand.Intn(randomCheerOdds) == 0:
		return models.ReasonRandom
	}
	return ""
}
