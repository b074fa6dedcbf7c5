package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// comebackGapDays is the minimum calendar-day gap between a card's two most
// recent logs for the card to count as a comeback. A 3-day gap is an ordinary
// weekend skip; 4 or more marks a real return.
const comebackGapDays = 4

// PoolBuilder periodically materializes, per category, a capped random sample
// of currently-active cheer-visible cards for fast suggestion lookups.
type PoolBuilder struct {
	cards      CardStore
	logs       LogStore
	categories CategoryStore
	pools      PoolStore
	poolCap    int
	windowDays int
	now        func() time.Time
}

// NewPoolBuilder creates a new pool builder
func NewPoolBuilder(cards CardStore, logs LogStore, categories CategoryStore, pools PoolStore, poolCap, windowDays int) *PoolBuilder {
	return &PoolBuilder{
		cards:      cards,
		logs:       logs,
		categories: categories,
		pools:      pools,
		poolCap:    poolCap,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// RebuildAll rebuilds the pool for every known category. A failure in one
// category is logged and does not abort the remaining categories; the next
// scheduled run is the retry mechanism.
func (b *PoolBuilder) RebuildAll(ctx context.Context) error {
	categories, err := b.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	rebuilt, failed := 0, 0
	for _, category := range categories {
		size, err := b.rebuildCategory(ctx, category)
		if err != nil {
			failed++
			log.Error().Err(err).Str("category", category.ID).Msg("Failed to rebuild pool")
			continue
		}
		if size > 0 {
			rebuilt++
		}
	}

	log.Info().
		Int("categories", len(categories)).
		Int("rebuilt", rebuilt).
		Int("failed", failed).
		Msg("Matching pool rebuild finished")
	return nil
}

// rebuildCategory rebuilds one category's pool and returns the number of cards
// written. Categories with no eligible cards are skipped; a previously written
// pool is left stale rather than deleted.
func (b *PoolBuilder) rebuildCategory(ctx context.Context, category models.Category) (int, error) {
	cards, err := b.cards.ListCheerVisibleByCategory(ctx, category.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list cards: %w", err)
	}

	now := b.now()
	cutoff := now.AddDate(0, 0, -b.windowDays).Format(dateLayout)

	poolCards := make([]models.PoolCard, 0, len(cards))
	for _, c := range cards {
		// Calendar-day string comparison: a card logged exactly windowDays
		// ago is still in.
		if c.LastLoggedDate == "" || c.LastLoggedDate < cutoff {
			continue
		}
		poolCards = append(poolCards, models.PoolCard{
			CardID:         c.ID,
			OwnerID:        c.OwnerID,
			Title:          c.Title,
			CurrentStreak:  c.CurrentStreak,
			LastLoggedDate: c.LastLoggedDate,
			TotalLogs:      c.TotalLogs,
			IsComeback:     b.isComeback(ctx, c.ID),
		})
	}

	if len(poolCards) == 0 {
		return 0, nil
	}

	rand.Shuffle(len(poolCards), func(i, j int) {
		poolCards[i], poolCards[j] = poolCards[j], poolCards[i]
	})
	if len(poolCards) > b.poolCap {
		poolCards = poolCards[:b.poolCap]
	}

	pool := &models.Pool{
		CategoryID:    category.ID,
		CategoryLabel: category.Label,
		ActiveCards:   poolCards,
		UpdatedAt:     now,
	}
	if err := b.pools.Upsert(ctx, pool); err != nil {
		return 0, fmt.Errorf("failed to upsert pool: %w", err)
	}
	return len(poolCards), nil
}

// isComeback reports whether the card's most recent log follows a gap of at
// least comebackGapDays after the prior one. Missing history or a failed log
// read yields false.
func (b *PoolBuilder) isComeback(ctx context.Context, cardID string) bool {
	times, err := b.logs.RecentLogTimes(ctx, cardID, 2)
	if err != nil {
		log.Warn().Err(err).Str("card_id", cardID).Msg("Failed to read logs for comeback check")
		return false
	}
	if len(times) < 2 {
		return false
	}
	return calendarDayDiff(times[1], times[0]) >= comebackGapDays
}

// calendarDayDiff returns the whole calendar days between two timestamps,
// ignoring time of day.
func calendarDayDiff(earlier, later time.Time) int {
	e := time.Date(earlier.Year(), earlier.Month(), earlier.Day(), 0, 0, 0, 0, time.UTC)
	l := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, time.UTC)
	return int(l.Sub(e).Hours() / 24)
}
