package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"habit-cheer-backend/internal/models"
)

// In-memory store fakes shared by the service tests.

type fakeCardStore struct {
	cards map[string]*models.Card
	err   error
}

func newFakeCardStore(cards ...*models.Card) *fakeCardStore {
	s := &fakeCardStore{cards: make(map[string]*models.Card)}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	return s
}

func (s *fakeCardStore) GetByID(_ context.Context, id string) (*models.Card, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.cards[id]
	if !ok {
		return nil, errors.New("card not found")
	}
	return c, nil
}

func (s *fakeCardStore) list(filter func(*models.Card) bool) []models.Card {
	var out []models.Card
	for _, c := range s.cards {
		if filter(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeCardStore) ListCheerVisibleByCategory(_ context.Context, categoryL3 string) ([]models.Card, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list(func(c *models.Card) bool {
		return c.CategoryL3 == categoryL3 && c.VisibleForCheers && c.Status != models.CardStatusArchived
	}), nil
}

func (s *fakeCardStore) ListCheerVisibleByOwner(_ context.Context, ownerID string) ([]models.Card, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list(func(c *models.Card) bool {
		return c.OwnerID == ownerID && c.VisibleForCheers && c.Status != models.CardStatusArchived
	}), nil
}

func (s *fakeCardStore) ListByOwner(_ context.Context, ownerID string) ([]models.Card, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list(func(c *models.Card) bool {
		return c.OwnerID == ownerID && c.Status != models.CardStatusArchived
	}), nil
}

func (s *fakeCardStore) ListCheerVisible(_ context.Context) ([]models.Card, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list(func(c *models.Card) bool {
		return c.VisibleForCheers && c.Status != models.CardStatusArchived
	}), nil
}

type fakeLogStore struct {
	// logTimes maps card id to timestamps, newest first
	logTimes map[string][]time.Time
	err      error
}

func (s *fakeLogStore) RecentLogTimes(_ context.Context, cardID string, limit int) ([]time.Time, error) {
	if s.err != nil {
		return nil, s.err
	}
	times := s.logTimes[cardID]
	if len(times) > limit {
		times = times[:limit]
	}
	return times, nil
}

type fakeCategoryStore struct {
	categories []models.Category
	labelErr   error
}

func (s *fakeCategoryStore) List(_ context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *fakeCategoryStore) GetLabel(_ context.Context, id string) (string, error) {
	if s.labelErr != nil {
		return "", s.labelErr
	}
	for _, c := range s.categories {
		if c.ID == id {
			return c.Label, nil
		}
	}
	return "", errors.New("category not found")
}

type fakePoolStore struct {
	pools  map[string]*models.Pool
	getErr map[string]error
}

func newFakePoolStore() *fakePoolStore {
	return &fakePoolStore{pools: make(map[string]*models.Pool), getErr: make(map[string]error)}
}

func (s *fakePoolStore) Upsert(_ context.Context, pool *models.Pool) error {
	s.pools[pool.CategoryID] = pool
	return nil
}

func (s *fakePoolStore) Get(_ context.Context, categoryID string) (*models.Pool, error) {
	if err := s.getErr[categoryID]; err != nil {
		return nil, err
	}
	return s.pools[categoryID], nil
}

type fakeSendStateStore struct {
	states map[string]*models.SendState
	err    error
}

func newFakeSendStateStore() *fakeSendStateStore {
	return &fakeSendStateStore{states: make(map[string]*models.SendState)}
}

func (s *fakeSendStateStore) Get(_ context.Context, userID string) (*models.SendState, error) {
	if s.err != nil {
		return nil, s.err
	}
	state, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	copied := *state
	copied.SentPairs = append([]models.SentPair(nil), state.SentPairs...)
	return &copied, nil
}

type fakeReactionStore struct {
	reactions  map[string]*models.Reaction
	sendStates *fakeSendStateStore
	recentErr  error
}

func newFakeReactionStore(states *fakeSendStateStore) *fakeReactionStore {
	if states == nil {
		states = newFakeSendStateStore()
	}
	return &fakeReactionStore{
		reactions:  make(map[string]*models.Reaction),
		sendStates: states,
	}
}

func (s *fakeReactionStore) Create(_ context.Context, reaction *models.Reaction) error {
	copied := *reaction
	s.reactions[reaction.ID] = &copied
	return nil
}

func (s *fakeReactionStore) CreateWithSendState(ctx context.Context, reaction *models.Reaction, state *models.SendState) error {
	if err := s.Create(ctx, reaction); err != nil {
		return err
	}
	s.sendStates.states[state.UserID] = state
	return nil
}

func (s *fakeReactionStore) DeleteWithSendState(_ context.Context, reactionID string, state *models.SendState) error {
	delete(s.reactions, reactionID)
	s.sendStates.states[state.UserID] = state
	return nil
}

func (s *fakeReactionStore) GetByID(_ context.Context, id string) (*models.Reaction, error) {
	r, ok := s.reactions[id]
	if !ok {
		return nil, errors.New("reaction not found")
	}
	return r, nil
}

func (s *fakeReactionStore) byRecipient(toUID string) []*models.Reaction {
	var out []*models.Reaction
	for _, r := range s.reactions {
		if r.ToUID == toUID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *fakeReactionStore) ListByRecipient(_ context.Context, toUID string, limit int) ([]models.Reaction, error) {
	var out []models.Reaction
	for _, r := range s.byRecipient(toUID) {
		out = append(out, *r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeReactionStore) RecentSystemMessages(_ context.Context, toUID string, limit int) ([]string, error) {
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	var out []string
	for _, r := range s.byRecipient(toUID) {
		if r.FromUID != models.SenderSystem || r.Message == nil {
			continue
		}
		out = append(out, *r.Message)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeReactionStore) CountSystemForCardSince(_ context.Context, cardID string, since time.Time) (int, error) {
	count := 0
	for _, r := range s.reactions {
		if r.ToCardID == cardID && r.FromUID == models.SenderSystem && !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *fakeReactionStore) ListDueForDelivery(_ context.Context, now time.Time, limit int) ([]models.Reaction, error) {
	var out []models.Reaction
	for _, r := range s.reactions {
		if !r.Delivered && r.ScheduledFor != nil && !r.ScheduledFor.After(now) {
			out = append(out, *r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeReactionStore) SetScheduledFor(_ context.Context, id string, at time.Time) error {
	r, ok := s.reactions[id]
	if !ok {
		return errors.New("reaction not found")
	}
	r.ScheduledFor = &at
	return nil
}

func (s *fakeReactionStore) MarkDelivered(_ context.Context, id string, at time.Time) error {
	r, ok := s.reactions[id]
	if !ok {
		return errors.New("reaction not found")
	}
	r.Delivered = true
	r.DeliveredAt = &at
	return nil
}

func (s *fakeReactionStore) MarkRead(_ context.Context, id, toUID string) error {
	r, ok := s.reactions[id]
	if !ok || r.ToUID != toUID {
		return errors.New("reaction not found")
	}
	r.IsRead = true
	return nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) UpdatePushToken(_ context.Context, userID string, token *string) error {
	u, ok := s.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.PushToken = token
	return nil
}

func (s *fakeUserStore) UpdateNotificationSettings(_ context.Context, user *models.User) error {
	u, ok := s.users[user.ID]
	if !ok {
		return errors.New("user not found")
	}
	u.QuietHoursEnabled = user.QuietHoursEnabled
	u.QuietHoursStart = user.QuietHoursStart
	u.QuietHoursEnd = user.QuietHoursEnd
	u.NotificationMode = user.NotificationMode
	u.BatchTimes = user.BatchTimes
	return nil
}

type fakeFavoriteStore struct {
	favorites map[string]*models.Favorite
	err       error
}

func newFakeFavoriteStore(favorites ...*models.Favorite) *fakeFavoriteStore {
	s := &fakeFavoriteStore{favorites: make(map[string]*models.Favorite)}
	for _, f := range favorites {
		s.favorites[f.ID] = f
	}
	return s
}

func (s *fakeFavoriteStore) Create(_ context.Context, favorite *models.Favorite) error {
	s.favorites[favorite.ID] = favorite
	return nil
}

func (s *fakeFavoriteStore) Delete(_ context.Context, id, ownerID string) error {
	f, ok := s.favorites[id]
	if !ok || f.OwnerID != ownerID {
		return errors.New("favorite not found")
	}
	delete(s.favorites, id)
	return nil
}

func (s *fakeFavoriteStore) ListByOwner(_ context.Context, ownerID string) ([]models.Favorite, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Favorite
	for _, f := range s.favorites {
		if f.OwnerID == ownerID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeFavoriteStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	favorites, err := s.ListByOwner(ctx, ownerID)
	return len(favorites), err
}

func (s *fakeFavoriteStore) Exists(_ context.Context, ownerID, targetCardID string) (bool, error) {
	for _, f := range s.favorites {
		if f.OwnerID == ownerID && f.TargetCardID == targetCardID {
			return true, nil
		}
	}
	return false, nil
}

// fakePusher records push attempts
type fakePusher struct {
	pushes []fakePush
	err    error
}

type fakePush struct {
	token string
	title string
	body  string
}

func (p *fakePusher) Push(token, title, body string, _ map[string]string) error {
	p.pushes = append(p.pushes, fakePush{token: token, title: title, body: body})
	return p.err
}
