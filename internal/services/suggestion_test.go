package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"habit-cheer-backend/internal/models"
)

func poolEntry(cardID, ownerID string) models.PoolCard {
	return models.PoolCard{
		CardID:         cardID,
		OwnerID:        ownerID,
		Title:          "Morning run",
		CurrentStreak:  3,
		LastLoggedDate: "2026-03-10",
		TotalLogs:      12,
	}
}

type suggestionFixture struct {
	svc        *SuggestionService
	pools      *fakePoolStore
	sendStates *fakeSendStateStore
	favorites  *fakeFavoriteStore
	clock      time.Time
}

func newSuggestionFixture(t *testing.T, ownCards ...*models.Card) *suggestionFixture {
	t.Helper()
	f := &suggestionFixture{
		pools:      newFakePoolStore(),
		sendStates: newFakeSendStateStore(),
		favorites:  newFakeFavoriteStore(),
		clock:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewSuggestionService(newFakeCardStore(ownCards...), f.pools, f.sendStates, f.favorites, 3, 24)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestSuggest_ExcludesSelf(t *testing.T) {
	f := newSuggestionFixture(t, testCard("my-card", "me", "aerobic", "2026-03-10"))
	f.pools.pools["aerobic"] = &models.Pool{
		CategoryID: "aerobic",
		ActiveCards: []models.PoolCard{
			poolEntry("my-card", "me"),
			poolEntry("peer-1", "other-1"),
			poolEntry("peer-2", "other-2"),
		},
	}

	suggestions := f.svc.Suggest(context.Background(), "me")
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	for _, s := range suggestions {
		if s.OwnerID == "me" {
			t.Errorf("suggestion %s is owned by the requester", s.CardID)
		}
	}
}

func TestSuggest_ExcludesRecentlyCheered(t *testing.T) {
	f := newSuggestionFixture(t, testCard("my-card", "me", "aerobic", "2026-03-10"))
	f.pools.pools["aerobic"] = &models.Pool{
		CategoryID:  "aerobic",
		ActiveCards: []models.PoolCard{poolEntry("peer-1", "other-1")},
	}
	f.sendStates.states["me"] = &models.SendState{
		UserID:    "me",
		SentPairs: []models.SentPair{{ToCardID: "peer-1", SentAt: f.clock.Add(-10 * time.Hour)}},
	}

	if got := f.svc.Suggest(context.Background(), "me"); len(got) != 0 {
		t.Fatalf("card cheered 10h ago should be excluded, got %v", got)
	}

	// 25 hours after the send the target is eligible again.
	f.sendStates.states["me"].SentPairs[0].SentAt = f.clock.Add(-25 * time.Hour)
	got := f.svc.Suggest(context.Background(), "me")
	if len(got) != 1 || got[0].CardID != "peer-1" {
		t.Fatalf("card cheered 25h ago should be eligible, got %v", got)
	}
}

func TestSuggest_NoOwnCategoriesMeansEmpty(t *testing.T) {
	f := newSuggestionFixture(t)
	f.pools.pools["aerobic"] = &models.Pool{
		CategoryID:  "aerobic",
		ActiveCards: []models.PoolCard{poolEntry("peer-1", "other-1")},
	}

	if got := f.svc.Suggest(context.Background(), "me"); len(got) != 0 {
		t.Fatalf("user with no cheer-visible cards should get no suggestions, got %v", got)
	}
}

func TestSuggest_CapsAtThree(t *testing.T) {
	f := newSuggestionFixture(t, testCard("my-card", "me", "aerobic", "2026-03-10"))
	var entries []models.PoolCard
	for i := 0; i < 10; i++ {
		entries = append(entries, poolEntry(fmt.Sprintf("peer-%d", i), fmt.Sprintf("other-%d", i)))
	}
	f.pools.pools["aerobic"] = &models.Pool{CategoryID: "aerobic", ActiveCards: entries}

	if got := f.svc.Suggest(context.Background(), "me"); len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
}

func TestSuggest_FavoritesComeFirst(t *testing.T) {
	f := newSuggestionFixture(t, testCard("my-card", "me", "aerobic", "2026-03-10"))
	var entries []models.PoolCard
	for i := 0; i < 10; i++ {
		entries = append(entries, poolEntry(fmt.Sprintf("peer-%d", i), fmt.Sprintf("other-%d", i)))
	}
	f.pools.pools["aerobic"] = &models.Pool{CategoryID: "aerobic", ActiveCards: entries}
	f.favorites.favorites["fav-1"] = &models.Favorite{
		ID:           "fav-1",
		OwnerID:      "me",
		TargetUID:    "other-7",
		TargetCardID: "peer-7",
		CategoryID:   "aerobic",
	}

	suggestions := f.svc.Suggest(context.Background(), "me")
	if len(suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(suggestions))
	}
	if suggestions[0].CardID != "peer-7" {
		t.Errorf("favorited card should lead the suggestions, got %s first", suggestions[0].CardID)
	}
}

func TestSuggest_PoolReadFailureSkipsCategory(t *testing.T) {
	f := newSuggestionFixture(t,
		testCard("my-aerobic", "me", "aerobic", "2026-03-10"),
		testCard("my-reading", "me", "reading", "2026-03-10"),
	)
	f.pools.pools["reading"] = &models.Pool{
		CategoryID:  "reading",
		ActiveCards: []models.PoolCard{poolEntry("peer-r", "other-r")},
	}
	f.pools.getErr["aerobic"] = fmt.Errorf("store unavailable")

	got := f.svc.Suggest(context.Background(), "me")
	if len(got) != 1 || got[0].CardID != "peer-r" {
		t.Fatalf("failing category should be skipped, not fatal; got %v", got)
	}
}
