package services

import (
	"context"
	"math/rand"

	"habit-cheer-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// typeWeight pairs a reaction type with its integer percentage weight
type typeWeight struct {
	reactionType string
	weight       int
}

// reactionWeights holds the per-reason distribution over reaction types.
// Weights are integer percentages summing to 100 per reason. Negative
// triggers lean on support; records lean on cheer.
var reactionWeights = map[string][]typeWeight{
	models.ReasonRecord: {
		{models.ReactionCheer, 65},
		{models.ReactionAmazing, 20},
		{models.ReactionSupport, 15},
	},
	models.ReasonStreakBreak: {
		{models.ReactionCheer, 25},
		{models.ReactionAmazing, 15},
		{models.ReactionSupport, 60},
	},
	models.ReasonLongAbsence: {
		{models.ReactionCheer, 40},
		{models.ReactionAmazing, 10},
		{models.ReactionSupport, 50},
	},
	models.ReasonRandom: {
		{models.ReactionCheer, 40},
		{models.ReactionAmazing, 30},
		{models.ReactionSupport, 30},
	},
}

// messagePools maps (reason, type) to its fixed candidate messages
var messagePools = map[string]map[string][]string{
	models.ReasonRecord: {
		models.ReactionCheer: {
			"New record! Keep the momentum going",
			"Your streak just hit a new high!",
			"Another milestone in the books",
			"Record day — you earned this one",
		},
		models.ReactionAmazing: {
			"That streak is seriously impressive",
			"You're on a whole new level now",
			"Personal best — amazing work",
		},
		models.ReactionSupport: {
			"New heights, one day at a time",
			"Steady work pays off — nice record",
			"Proud of how far you've come",
		},
	},
	models.ReasonStreakBreak: {
		models.ReactionCheer: {
			"Every streak starts at one — go again",
			"Today is a fresh start",
			"One miss doesn't define you",
		},
		models.ReactionAmazing: {
			"Getting back up is the impressive part",
			"Restarting takes real strength",
			"The comeback will be better than the streak",
		},
		models.ReactionSupport: {
			"A missed day is just a day",
			"Be kind to yourself — tomorrow's waiting",
			"Streaks break, habits don't have to",
			"Rest counts as part of the journey",
			"You've got this, one day at a time",
		},
	},
	models.ReasonLongAbsence: {
		models.ReactionCheer: {
			"Welcome back! Your habit missed you",
			"Great to see you again",
			"Picking it back up is the hard part — done",
		},
		models.ReactionAmazing: {
			"Coming back after a break is the real win",
		},
		models.ReactionSupport: {
			"It's never too late to return",
			"The door is always open — glad you're here",
			"Starting again is still starting",
			"However long the break, you came back",
		},
	},
	models.ReasonRandom: {
		models.ReactionCheer: {
			"Someone out there is cheering for you",
			"Keep showing up — it's working",
			"Your consistency is inspiring",
			"Just a little boost for your day",
		},
		models.ReactionAmazing: {
			"Quietly crushing it, as usual",
			"That dedication doesn't go unnoticed",
			"You make it look easy",
		},
		models.ReactionSupport: {
			"Small steps still move you forward",
			"Whatever pace you're at, it counts",
			"Rooting for you today",
		},
	},
}

// recentMessageWindow is how many recent system messages the anti-repetition
// filter looks back over
const recentMessageWindow = 5

// SelectReactionType picks a reaction type for the given sending reason by a
// cumulative-weight walk over the reason's distribution. Unknown reasons and
// edge cases fall back to cheer.
func SelectReactionType(reason string) string {
	weights, ok := reactionWeights[reason]
	if !ok {
		return models.ReactionCheer
	}

	draw := rand.Intn(100)
	acc := 0
	for _, tw := range weights {
		acc += tw.weight
		if draw < acc {
			return tw.reactionType
		}
	}
	return models.ReactionCheer
}

// ReactionSelector picks messages for automated cheers with anti-repetition
// against the recipient's recent system reactions.
type ReactionSelector struct {
	reactions ReactionStore
}

// NewReactionSelector creates a new reaction selector
func NewReactionSelector(reactions ReactionStore) *ReactionSelector {
	return &ReactionSelector{reactions: reactions}
}

// SelectMessage picks a message for the (reason, type) pair, avoiding any
// message among the recipient's recent system reactions. If exclusion empties
// the pool, or the lookup fails, it falls back to the full pool.
func (s *ReactionSelector) SelectMessage(ctx context.Context, toUID, reason, reactionType string) string {
	pool := messagePools[reason][reactionType]
	if len(pool) == 0 {
		return ""
	}

	recent, err := s.reactions.RecentSystemMessages(ctx, toUID, recentMessageWindow)
	if err != nil {
		log.Warn().Err(err).Str("to_uid", toUID).Msg("Anti-repetition lookup failed, using full pool")
		return pool[rand.Intn(len(pool))]
	}

	seen := make(map[string]struct{}, len(recent))
	for _, m := range recent {
		seen[m] = struct{}{}
	}

	fresh := make([]string, 0, len(pool))
	for _, m := range pool {
		if _, ok := seen[m]; !ok {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		fresh = pool
	}
	return fresh[rand.Intn(len(fresh))]
}
