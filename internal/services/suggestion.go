package services

import (
	"context"
	"math/rand"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// SuggestionService produces a small randomized list of candidate cards for a
// user to cheer. Suggestions are best-effort and never blocking: every read
// failure degrades to a smaller (possibly empty) result instead of an error.
type SuggestionService struct {
	cards     CardStore
	pools     PoolStore
	sendState SendStateStore
	favorites FavoriteStore
	size      int
	cooldown  time.Duration
	now       func() time.Time
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(cards CardStore, pools PoolStore, sendState SendStateStore, favorites FavoriteStore, size, cooldownHours int) *SuggestionService {
	return &SuggestionService{
		cards:     cards,
		pools:     pools,
		sendState: sendState,
		favorites: favorites,
		size:      size,
		cooldown:  time.Duration(cooldownHours) * time.Hour,
		now:       time.Now,
	}
}

// Suggest returns up to size candidate cards from the requester's own
// categories, excluding the requester's cards and targets cheered within the
// cooldown window. The result is a fresh random sample on every call — there
// is no pagination and repeat calls may overlap.
func (s *SuggestionService) Suggest(ctx context.Context, userID string) []models.PoolCard {
	ownCards, err := s.cards.ListCheerVisibleByOwner(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load own cards for suggestions")
		return nil
	}

	categories := make(map[string]struct{})
	for _, c := range ownCards {
		categories[c.CategoryL3] = struct{}{}
	}
	if len(categories) == 0 {
		// No categories means no peers to suggest.
		return nil
	}

	excluded := s.recentlyCheered(ctx, userID)
	favored := s.favoriteCards(ctx, userID)

	var favorites, others []models.PoolCard
	for category := range categories {
		pool, err := s.pools.Get(ctx, category)
		if err != nil {
			log.Warn().Err(err).Str("category", category).Msg("Skipping category pool")
			continue
		}
		if pool == nil {
			continue
		}
		for _, entry := range pool.ActiveCards {
			if entry.OwnerID == userID {
				continue
			}
			if _, ok := excluded[entry.CardID]; ok {
				continue
			}
			if _, ok := favored[entry.CardID]; ok {
				favorites = append(favorites, entry)
			} else {
				others = append(others, entry)
			}
		}
	}

	shufflePoolCards(favorites)
	shufflePoolCards(others)

	// Favorited targets get priority placement before the cut.
	candidates := append(favorites, others...)
	if len(candidates) > s.size {
		candidates = candidates[:s.size]
	}
	return candidates
}

// recentlyCheered returns the card ids the user has cheered inside the
// cooldown window. A read failure yields an empty set.
func (s *SuggestionService) recentlyCheered(ctx context.Context, userID string) map[string]struct{} {
	excluded := make(map[string]struct{})
	state, err := s.sendState.Get(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load send state for suggestions")
		return excluded
	}
	if state == nil {
		return excluded
	}
	now := s.now()
	for _, p := range state.SentPairs {
		if now.Sub(p.SentAt) < s.cooldown {
			excluded[p.ToCardID] = struct{}{}
		}
	}
	return excluded
}

// favoriteCards returns the card ids the user has favorited. Best-effort.
func (s *SuggestionService) favoriteCards(ctx context.Context, userID string) map[string]struct{} {
	favored := make(map[string]struct{})
	favorites, err := s.favorites.ListByOwner(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load favorites for suggestions")
		return favored
	}
	for _, f := range favorites {
		favored[f.TargetCardID] = struct{}{}
	}
	return favored
}

func shufflePoolCards(cards []models.PoolCard) {
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
