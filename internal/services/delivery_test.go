package services

import (
	"context"
	"testing"
	"time"

	"habit-cheer-backend/internal/models"
)

func TestInQuietHours(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
	}
	tests := []struct {
		name       string
		now        time.Time
		start, end string
		want       bool
	}{
		{"wraparound night", at(2, 0), "23:00", "07:00", true},
		{"wraparound day", at(12, 0), "23:00", "07:00", false},
		{"wraparound at start", at(23, 0), "23:00", "07:00", true},
		{"wraparound at end", at(7, 0), "23:00", "07:00", false},
		{"plain inside", at(9, 0), "08:00", "10:00", true},
		{"plain outside", at(11, 0), "08:00", "10:00", false},
		{"plain at start", at(8, 0), "08:00", "10:00", true},
		{"plain at end", at(10, 0), "08:00", "10:00", false},
	}
	for _, tt := range tests {
		if got := inQuietHours(tt.now, tt.start, tt.end); got != tt.want {
			t.Errorf("%s: inQuietHours = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNextQuietHoursEnd(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	got := nextQuietHoursEnd(now, "07:00")
	want := time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("end past midnight: got %v, want %v", got, want)
	}

	now = time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	got = nextQuietHoursEnd(now, "07:00")
	want = time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("end later today: got %v, want %v", got, want)
	}
}

func TestNextBatchSlot(t *testing.T) {
	slots := []string{"08:00", "12:00", "20:00"}

	now := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	got := nextBatchSlot(now, slots)
	want := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("13:00: got %v, want same-day 20:00", got)
	}

	now = time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
	got = nextBatchSlot(now, slots)
	want = time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("21:00: got %v, want next-day 08:00", got)
	}

	// No configured slots fall back to the defaults.
	now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got = nextBatchSlot(now, nil)
	want = time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("defaults: got %v, want 12:30", got)
	}
}

type deliveryFixture struct {
	svc       *DeliveryService
	users     *fakeUserStore
	reactions *fakeReactionStore
	pusher    *fakePusher
	clock     time.Time
}

func newDeliveryFixture(t *testing.T, recipient *models.User) *deliveryFixture {
	t.Helper()
	f := &deliveryFixture{
		users:     newFakeUserStore(),
		reactions: newFakeReactionStore(nil),
		pusher:    &fakePusher{},
		clock:     time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
	}
	if recipient != nil {
		f.users.users[recipient.ID] = recipient
	}
	cards := newFakeCardStore(testCard("card-1", "recipient", "aerobic", "2026-03-10"))
	categories := &fakeCategoryStore{categories: []models.Category{{ID: "aerobic", Label: "Aerobic exercise"}}}
	f.svc = NewDeliveryService(f.users, cards, categories, f.reactions, f.pusher, nil)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func humanReaction(id string) *models.Reaction {
	return &models.Reaction{
		ID:        id,
		FromUID:   "sender",
		ToUID:     "recipient",
		ToCardID:  "card-1",
		Type:      models.ReactionCheer,
		Reason:    models.ReasonManual,
		CardTitle: "Morning run",
	}
}

func pushTokenUser(mode string) *models.User {
	token := "device-token"
	return &models.User{
		ID:               "recipient",
		PushToken:        &token,
		NotificationMode: mode,
	}
}

func TestHandleCreated_SystemReactionBypassed(t *testing.T) {
	f := newDeliveryFixture(t, pushTokenUser(models.NotifyModeRealtime))
	reaction := humanReaction("r1")
	reaction.FromUID = models.SenderSystem
	f.reactions.reactions["r1"] = reaction

	f.svc.HandleCreated(context.Background(), reaction)

	stored := f.reactions.reactions["r1"]
	if stored.Delivered || stored.ScheduledFor != nil {
		t.Error("delivery gate must not touch system reactions")
	}
	if len(f.pusher.pushes) != 0 {
		t.Error("no push expected for system reactions")
	}
}

func TestHandleCreated_RealtimeDelivers(t *testing.T) {
	f := newDeliveryFixture(t, pushTokenUser(models.NotifyModeRealtime))
	reaction := humanReaction("r1")
	f.reactions.reactions["r1"] = reaction

	f.svc.HandleCreated(context.Background(), reaction)

	stored := f.reactions.reactions["r1"]
	if !stored.Delivered {
		t.Error("realtime reaction should be marked delivered")
	}
	if len(f.pusher.pushes) != 1 {
		t.Fatalf("got %d pushes, want 1", len(f.pusher.pushes))
	}
	if f.pusher.pushes[0].token != "device-token" {
		t.Errorf("pushed to token %q", f.pusher.pushes[0].token)
	}
}

func TestHandleCreated_QuietHoursDefers(t *testing.T) {
	recipient := pushTokenUser(models.NotifyModeRealtime)
	recipient.QuietHoursEnabled = true
	recipient.QuietHoursStart = "23:00"
	recipient.QuietHoursEnd = "07:00"

	f := newDeliveryFixture(t, recipient)
	f.clock = time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	reaction := humanReaction("r1")
	f.reactions.reactions["r1"] = reaction

	f.svc.HandleCreated(context.Background(), reaction)

	stored := f.reactions.reactions["r1"]
	if stored.Delivered {
		t.Error("reaction in quiet hours must not be delivered now")
	}
	want := time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC)
	if stored.ScheduledFor == nil || !stored.ScheduledFor.Equal(want) {
		t.Errorf("scheduled_for = %v, want %v", stored.ScheduledFor, want)
	}
	if len(f.pusher.pushes) != 0 {
		t.Error("no push expected during quiet hours")
	}
}

func TestHandleCreated_BatchModeDefers(t *testing.T) {
	recipient := pushTokenUser(models.NotifyModeBatch)
	recipient.BatchTimes = []string{"08:00", "12:00", "20:00"}

	f := newDeliveryFixture(t, recipient)
	reaction := humanReaction("r1")
	f.reactions.reactions["r1"] = reaction

	f.svc.HandleCreated(context.Background(), reaction)

	stored := f.reactions.reactions["r1"]
	want := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	if stored.ScheduledFor == nil || !stored.ScheduledFor.Equal(want) {
		t.Errorf("scheduled_for = %v, want %v", stored.ScheduledFor, want)
	}
	if stored.Delivered {
		t.Error("batch-mode reaction must not be delivered now")
	}
}

func TestHandleCreated_MissingRecipientIsNoop(t *testing.T) {
	f := newDeliveryFixture(t, nil)
	reaction := humanReaction("r1")
	f.reactions.reactions["r1"] = reaction

	f.svc.HandleCreated(context.Background(), reaction)

	stored := f.reactions.reactions["r1"]
	if stored.Delivered || stored.ScheduledFor != nil {
		t.Error("missing recipient should leave the reaction untouched")
	}
}

func TestHandleCreated_PushFailureStillMarksDelivered(t *testing.T) {
	f := newDeliveryFixture(t, pushTokenUser(models.NotifyModeRealtime))
	f.pusher.err = context.DeadlineExceeded
	reaction := humanReaction("r1")
	f.reactions.reactions["r1"] = reaction

	f.svc.HandleCreated(context.Background(), reaction)

	if !f.reactions.reactions["r1"].Delivered {
		t.Error("reaction must be marked delivered regardless of push outcome")
	}
}

func TestSweep_DeliversDueReactions(t *testing.T) {
	f := newDeliveryFixture(t, pushTokenUser(models.NotifyModeRealtime))

	due := humanReaction("r-due")
	dueAt := f.clock.Add(-5 * time.Minute)
	due.ScheduledFor = &dueAt
	f.reactions.reactions["r-due"] = due

	future := humanReaction("r-future")
	futureAt := f.clock.Add(2 * time.Hour)
	future.ScheduledFor = &futureAt
	f.reactions.reactions["r-future"] = future

	if err := f.svc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if !f.reactions.reactions["r-due"].Delivered {
		t.Error("due reaction should be delivered by the sweep")
	}
	if f.reactions.reactions["r-future"].Delivered {
		t.Error("future reaction should stay deferred")
	}
	if len(f.pusher.pushes) != 1 {
		t.Errorf("got %d pushes, want 1", len(f.pusher.pushes))
	}
}
