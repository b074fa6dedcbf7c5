package services

import (
	"context"
	"sort"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// defaultBatchTimes are the delivery slots used when a batch-mode recipient
// has not configured any
var defaultBatchTimes = []string{"08:00", "12:30", "20:00"}

// genericCategoryLabel is the notification fallback when the card's category
// cannot be resolved
const genericCategoryLabel = "your habit"

// DeliveryService decides, for each newly created human-sent reaction, between
// immediate push delivery and deferral to quiet-hours end or the next batch
// slot. It also runs the sweep that delivers deferred reactions.
type DeliveryService struct {
	users      UserStore
	cards      CardStore
	categories CategoryStore
	reactions  ReactionStore
	pusher     Pusher
	hub        *WSHub
	now        func() time.Time
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(users UserStore, cards CardStore, categories CategoryStore, reactions ReactionStore, pusher Pusher, hub *WSHub) *DeliveryService {
	return &DeliveryService{
		users:      users,
		cards:      cards,
		categories: categories,
		reactions:  reactions,
		pusher:     pusher,
		hub:        hub,
		now:        time.Now,
	}
}

// HandleCreated reacts to a freshly created reaction. It never returns an
// error: the gate is a fire-and-forget background reaction to a store event,
// so every failure is logged and swallowed.
func (s *DeliveryService) HandleCreated(ctx context.Context, reaction *models.Reaction) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("reaction_id", reaction.ID).Msg("Delivery gate panicked")
		}
	}()

	// System cheers never go through the human-delivery decision path.
	if reaction.FromUID == models.SenderSystem {
		return
	}

	recipient, err := s.users.GetByID(ctx, reaction.ToUID)
	if err != nil {
		log.Error().Err(err).Str("reaction_id", reaction.ID).Msg("Failed to load recipient")
		return
	}
	if recipient == nil {
		// No settings record means this user cannot currently receive
		// notifications; the reaction stays undelivered.
		return
	}

	now := s.now()

	if recipient.QuietHoursEnabled && inQuietHours(now, recipient.QuietHoursStart, recipient.QuietHoursEnd) {
		deferred := nextQuietHoursEnd(now, recipient.QuietHoursEnd)
		if err := s.reactions.SetScheduledFor(ctx, reaction.ID, deferred); err != nil {
			log.Error().Err(err).Str("reaction_id", reaction.ID).Msg("Failed to defer for quiet hours")
		}
		return
	}

	if recipient.NotificationMode == models.NotifyModeBatch {
		deferred := nextBatchSlot(now, recipient.BatchTimes)
		if err := s.reactions.SetScheduledFor(ctx, reaction.ID, deferred); err != nil {
			log.Error().Err(err).Str("reaction_id", reaction.ID).Msg("Failed to defer for batch delivery")
		}
		return
	}

	s.deliverNow(ctx, reaction, recipient, now)
}

// Sweep delivers every reaction whose deferred slot has passed. Per-reaction
// failures are isolated.
func (s *DeliveryService) Sweep(ctx context.Context) error {
	now := s.now()
	due, err := s.reactions.ListDueForDelivery(ctx, now, 100)
	if err != nil {
		return err
	}

	for i := range due {
		reaction := &due[i]
		recipient, err := s.users.GetByID(ctx, reaction.ToUID)
		if err != nil || recipient == nil {
			if err != nil {
				log.Error().Err(err).Str("reaction_id", reaction.ID).Msg("Failed to load recipient in sweep")
			}
			continue
		}
		s.deliverNow(ctx, reaction, recipient, now)
	}

	if len(due) > 0 {
		log.Info().Int("delivered", len(due)).Msg("Deferred delivery sweep finished")
	}
	return nil
}

// deliverNow pushes the notification (best-effort) and marks the reaction
// delivered regardless of push outcome.
func (s *DeliveryService) deliverNow(ctx context.Context, reaction *models.Reaction, recipient *models.User, now time.Time) {
	label := s.resolveCategoryLabel(ctx, reaction.ToCardID)
	title, body := notificationText(reaction.Type, reaction.CardTitle, label)

	if recipient.PushToken != nil && *recipient.PushToken != "" {
		if err := s.pusher.Push(*recipient.PushToken, title, body, map[string]string{"type": reaction.Type}); err != nil {
			log.Error().Err(err).Str("reaction_id", reaction.ID).Msg("Failed to push notification")
		}
	}

	if s.hub != nil {
		s.hub.NotifyReaction(reaction.ToUID, reaction)
	}

	if err := s.reactions.MarkDelivered(ctx, reaction.ID, now); err != nil {
		log.Error().Err(err).Str("reaction_id", reaction.ID).Msg("Failed to mark reaction delivered")
	}
}

// resolveCategoryLabel looks up the human-readable L3 label for the target
// card, defaulting to a generic label on any failure.
func (s *DeliveryService) resolveCategoryLabel(ctx context.Context, cardID string) string {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return genericCategoryLabel
	}
	label, err := s.categories.GetLabel(ctx, card.CategoryL3)
	if err != nil {
		return genericCategoryLabel
	}
	return label
}

// notificationText builds the push title and body for a reaction type
func notificationText(reactionType, cardTitle, categoryLabel string) (string, string) {
	switch reactionType {
	case models.ReactionAmazing:
		return "Someone thinks you're amazing!", "\"" + cardTitle + "\" (" + categoryLabel + ") impressed a fellow habit builder"
	case models.ReactionSupport:
		return "You've got support!", "A fellow habit builder is rooting for \"" + cardTitle + "\" (" + categoryLabel + ")"
	default:
		return "Someone cheered you on!", "\"" + cardTitle + "\" (" + categoryLabel + ") just got a cheer"
	}
}

// minutesOfDay parses an "HH:MM" string into minutes since midnight.
// Malformed values yield 0.
func minutesOfDay(clock string) int {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// inQuietHours reports whether now falls inside the [start, end) window.
// start > end means the window wraps midnight.
func inQuietHours(now time.Time, start, end string) bool {
	cur := now.Hour()*60 + now.Minute()
	startM, endM := minutesOfDay(start), minutesOfDay(end)
	if startM > endM {
		return cur >= startM || cur < endM
	}
	return cur >= startM && cur < endM
}

// nextQuietHoursEnd returns the next occurrence of the window's end time:
// today's if it has not passed yet, else tomorrow's.
func nextQuietHoursEnd(now time.Time, end string) time.Time {
	endM := minutesOfDay(end)
	candidate := time.Date(now.Year(), now.Month(), now.Day(), endM/60, endM%60, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// nextBatchSlot returns the earliest configured slot strictly after now,
// falling over to the earliest slot tomorrow when none remain today.
func nextBatchSlot(now time.Time, batchTimes []string) time.Time {
	slots := batchTimes
	if len(slots) == 0 {
		slots = defaultBatchTimes
	}
	sorted := make([]string, len(slots))
	copy(sorted, slots)
	sort.Strings(sorted)

	cur := now.Hour()*60 + now.Minute()
	for _, slot := range sorted {
		if m := minutesOfDay(slot); m > cur {
			return time.Date(now.Year(), now.Month(), now.Day(), m/60, m%60, 0, 0, now.Location())
		}
	}

	m := minutesOfDay(sorted[0])
	next := time.Date(now.Year(), now.Month(), now.Day(), m/60, m%60, 0, 0, now.Location())
	return next.AddDate(0, 0, 1)
}
