package services

import (
	"context"
	"time"

	"habit-cheer-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them in production; tests substitute in-memory fakes.

// CardStore provides read access to habit cards
type CardStore interface {
	GetByID(ctx context.Context, id string) (*models.Card, error)
	ListCheerVisibleByCategory(ctx context.Context, categoryL3 string) ([]models.Card, error)
	ListCheerVisibleByOwner(ctx context.Context, ownerID string) ([]models.Card, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Card, error)
	ListCheerVisible(ctx context.Context) ([]models.Card, error)
}

// LogStore provides read access to habit completion logs
type LogStore interface {
	RecentLogTimes(ctx context.Context, cardID string, limit int) ([]time.Time, error)
}

// CategoryStore provides read access to the category registry
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	GetLabel(ctx context.Context, id string) (string, error)
}

// PoolStore reads and replaces matching pool snapshots
type PoolStore interface {
	Upsert(ctx context.Context, pool *models.Pool) error
	Get(ctx context.Context, categoryID string) (*models.Pool, error)
}

// SendStateStore reads per-user send state. Writes go through ReactionStore
// so they stay atomic with the reaction they belong to.
type SendStateStore interface {
	Get(ctx context.Context, userID string) (*models.SendState, error)
}

// ReactionStore reads and writes reactions
type ReactionStore interface {
	Create(ctx context.Context, reaction *models.Reaction) error
	CreateWithSendState(ctx context.Context, reaction *models.Reaction, state *models.SendState) error
	DeleteWithSendState(ctx context.Context, reactionID string, state *models.SendState) error
	GetByID(ctx context.Context, id string) (*models.Reaction, error)
	ListByRecipient(ctx context.Context, toUID string, limit int) ([]models.Reaction, error)
	RecentSystemMessages(ctx context.Context, toUID string, limit int) ([]string, error)
	CountSystemForCardSince(ctx context.Context, cardID string, since time.Time) (int, error)
	ListDueForDelivery(ctx context.Context, now time.Time, limit int) ([]models.Reaction, error)
	SetScheduledFor(ctx context.Context, id string, at time.Time) error
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	MarkRead(ctx context.Context, id, toUID string) error
}

// UserStore reads and writes user records
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, token *string) error
	UpdateNotificationSettings(ctx context.Context, user *models.User) error
}

// FavoriteStore reads and writes favorites
type FavoriteStore interface {
	Create(ctx context.Context, favorite *models.Favorite) error
	Delete(ctx context.Context, id, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Favorite, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Exists(ctx context.Context, ownerID, targetCardID string) (bool, error)
}

// dateLayout is the calendar-date format used for daily quotas and the
// pool activity window. Quota semantics compare these strings directly.
const dateLayout = "2006-01-02"

// clockLayout is the format for quiet-hours and batch-slot times of day
const clockLayout = "15:04"
