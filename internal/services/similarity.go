package services

import (
	"context"
	"fmt"
	"strings"

	"habit-cheer-backend/internal/models"
)

// synonymTokens maps habit-title keywords to a canonical token so that
// "jogging" and "running" compare as the same activity.
var synonymTokens = map[string]string{
	"run":        "run",
	"running":    "run",
	"jog":        "run",
	"jogging":    "run",
	"walk":       "walk",
	"walking":    "walk",
	"stroll":     "walk",
	"gym":        "workout",
	"workout":    "workout",
	"exercise":   "workout",
	"training":   "workout",
	"lifting":    "workout",
	"read":       "read",
	"reading":    "read",
	"book":       "read",
	"books":      "read",
	"meditate":   "meditate",
	"meditation": "meditate",
	"mindfulness": "meditate",
	"journal":    "journal",
	"journaling": "journal",
	"diary":      "journal",
	"water":      "water",
	"hydrate":    "water",
	"stretch":    "stretch",
	"stretching": "stretch",
	"yoga":       "stretch",
	"study":      "study",
	"studying":   "study",
	"learn":      "study",
	"learning":   "study",
	"sleep":      "sleep",
	"bed":        "sleep",
	"wake":       "sleep",
}

// TitleSimilarity computes a 0-1 similarity score between two short labels.
// When both titles contain known keywords it uses Jaccard overlap of their
// canonical tokens; otherwise it falls back to a Levenshtein ratio.
func TitleSimilarity(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ta, tb := canonicalTokens(a), canonicalTokens(b)
	if len(ta) > 0 && len(tb) > 0 {
		return jaccard(ta, tb)
	}

	dist := levenshtein(na, nb)
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(dist)/float64(maxLen)
}

func normalizeTitle(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
}

func canonicalTokens(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(s)) {
		if canon, ok := synonymTokens[word]; ok {
			tokens[canon] = struct{}{}
		}
	}
	return tokens
}

func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// duplicateTitleThreshold is the score above which two titles count as duplicates
const duplicateTitleThreshold = 0.75

// TitleCheckService finds near-duplicate habit titles among a user's own cards
type TitleCheckService struct {
	cards CardStore
}

// NewTitleCheckService creates a new title check service
func NewTitleCheckService(cards CardStore) *TitleCheckService {
	return &TitleCheckService{cards: cards}
}

// FindSimilar returns the user's existing cards whose titles are near-duplicates
// of the proposed title
func (s *TitleCheckService) FindSimilar(ctx context.Context, ownerID, title string) ([]models.Card, error) {
	cards, err := s.cards.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	var similar []models.Card
	for _, c := range cards {
		if TitleSimilarity(title, c.Title) >= duplicateTitleThreshold {
			similar = append(similar, c)
		}
	}
	return similar, nil
}
