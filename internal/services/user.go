package services

import (
	"context"
	"fmt"
	"time"

	"habit-cheer-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtExpDays = 365

// UserService handles user-related business logic
type UserService struct {
	userRepo  UserStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, jwtSecret string) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// CreateUser creates a new anonymous user with default notification settings
func (s *UserService) CreateUser(ctx context.Context) (*models.User, error) {
	userID := uuid.New().String()

	token, err := s.GenerateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &models.User{
		ID:               userID,
		Token:            token,
		NotificationMode: models.NotifyModeRealtime,
		BatchTimes:       []string{},
		CreatedAt:        time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdatePushToken registers or clears a user's device push token
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, token *string) error {
	if err := s.userRepo.UpdatePushToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// NotificationSettings carries a user's delivery preferences
type NotificationSettings struct {
	QuietHoursEnabled bool     `json:"quiet_hours_enabled"`
	QuietHoursStart   string   `json:"quiet_hours_start"`
	QuietHoursEnd     string   `json:"quiet_hours_end"`
	NotificationMode  string   `json:"notification_mode"`
	BatchTimes        []string `json:"batch_times"`
}

// UpdateNotificationSettings updates a user's quiet hours and delivery mode
func (s *UserService) UpdateNotificationSettings(ctx context.Context, userID string, settings NotificationSettings) error {
	if settings.NotificationMode != models.NotifyModeRealtime && settings.NotificationMode != models.NotifyModeBatch {
		return fmt.Errorf("invalid notification mode: %s", settings.NotificationMode)
	}
	for _, clock := range append([]string{settings.QuietHoursStart, settings.QuietHoursEnd}, settings.BatchTimes...) {
		if clock == "" {
			continue
		}
		if _, err := time.Parse(clockLayout, clock); err != nil {
			return fmt.Errorf("invalid time of day %q: %w", clock, err)
		}
	}

	user := &models.User{
		ID:                userID,
		QuietHoursEnabled: settings.QuietHoursEnabled,
		QuietHoursStart:   settings.QuietHoursStart,
		QuietHoursEnd:     settings.QuietHoursEnd,
		NotificationMode:  settings.NotificationMode,
		BatchTimes:        settings.BatchTimes,
	}
	if err := s.userRepo.UpdateNotificationSettings(ctx, user); err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
