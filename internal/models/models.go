package models

import "time"

// Reaction types exchanged between users
const (
	ReactionCheer   = "cheer"
	ReactionAmazing = "amazing"
	ReactionSupport = "support"
)

// Reasons a reaction was sent. Human sends are always "manual";
// the rest are produced by the automated system cheer job.
const (
	ReasonManual      = "manual"
	ReasonRecord      = "record"
	ReasonStreakBreak = "streak_break"
	ReasonLongAbsence = "long_absence"
	ReasonRandom      = "random"
)

// SenderSystem is the sentinel from_uid for automated cheers
const SenderSystem = "system"

// Card lifecycle status
const (
	CardStatusActive   = "active"
	CardStatusArchived = "archived"
)

// Notification delivery modes
const (
	NotifyModeRealtime = "realtime"
	NotifyModeBatch    = "batch"
)

// User represents a user and their notification preferences
type User struct {
	ID                string    `json:"id"`
	Token             string    `json:"token,omitempty"`
	PushToken         *string   `json:"push_token,omitempty"`
	QuietHoursEnabled bool      `json:"quiet_hours_enabled"`
	QuietHoursStart   string    `json:"quiet_hours_start"` // "HH:MM"
	QuietHoursEnd     string    `json:"quiet_hours_end"`   // "HH:MM"
	NotificationMode  string    `json:"notification_mode"`
	BatchTimes        []string  `json:"batch_times"` // "HH:MM" slots
	CreatedAt         time.Time `json:"created_at"`
}

// Card represents a user's tracked habit
type Card struct {
	ID                 string `json:"id"`
	OwnerID            string `json:"owner_id"`
	CategoryL1         string `json:"category_l1"`
	CategoryL2         string `json:"category_l2"`
	CategoryL3         string `json:"category_l3"`
	Title              string `json:"title"`
	CurrentStreak      int    `json:"current_streak"`
	TotalLogs          int    `json:"total_logs"`
	LastLoggedDate     string `json:"last_logged_date"` // "YYYY-MM-DD" or ""
	VisibleForCheers   bool   `json:"visible_for_cheers"`
	VisibleForTemplate bool   `json:"visible_for_template"`
	Status             string `json:"status"`
}

// HabitLog represents a single daily completion of a card
type HabitLog struct {
	ID       string    `json:"id"`
	CardID   string    `json:"card_id"`
	OwnerID  string    `json:"owner_id"`
	LoggedAt time.Time `json:"logged_at"`
}

// Category represents an L3 habit category
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PoolCard is a denormalized snapshot of a card inside a matching pool
type PoolCard struct {
	CardID         string `json:"card_id"`
	OwnerID        string `json:"owner_id"`
	Title          string `json:"title"`
	CurrentStreak  int    `json:"current_streak"`
	LastLoggedDate string `json:"last_logged_date"`
	TotalLogs      int    `json:"total_logs"`
	IsComeback     bool   `json:"is_comeback"`
}

// Pool is the per-category snapshot of cheer-eligible cards
type Pool struct {
	CategoryID    string     `json:"category_id"`
	CategoryLabel string     `json:"category_label"`
	ActiveCards   []PoolCard `json:"active_cards"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SentPair records one outbound cheer for per-target cooldown tracking
type SentPair struct {
	ToCardID string    `json:"to_card_id"`
	SentAt   time.Time `json:"sent_at"`
}

// SendState tracks a user's outbound cheer rate limiting
type SendState struct {
	UserID         string     `json:"user_id"`
	DailyCount     int        `json:"daily_count"`
	DailyCountDate string     `json:"daily_count_date"` // "YYYY-MM-DD"
	SentPairs      []SentPair `json:"sent_pairs"`
}

// Reaction represents a cheer sent to a card, human- or system-originated
type Reaction struct {
	ID               string     `json:"id"`
	FromUID          string     `json:"from_uid"`
	ToUID            string     `json:"to_uid"`
	ToCardID         string     `json:"to_card_id"`
	Type             string     `json:"type"`
	Reason           string     `json:"reason"`
	Message          *string    `json:"message,omitempty"`
	CardTitle        string     `json:"card_title"`
	CardCategoryName string     `json:"card_category_name"`
	CreatedAt        time.Time  `json:"created_at"`
	ScheduledFor     *time.Time `json:"scheduled_for,omitempty"`
	Delivered        bool       `json:"delivered"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
	IsRead           bool       `json:"is_read"`
}

// Favorite pins another user's card for priority suggestion treatment
type Favorite struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	TargetUID    string    `json:"target_uid"`
	TargetCardID string    `json:"target_card_id"`
	CategoryID   string    `json:"category_id"`
	CreatedAt    time.Time `json:"created_at"`
}
