package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/domain/services"
)

// UserPreferencesService implements the UserPreferencesService interface
type UserPreferencesService struct {
	prefsRepo repositories.UserPreferencesRepository
	logger    *slog.Logger
}

// NewUserPreferencesService creates a new user preferences service
func NewUserPreferencesService(
	prefsRepo repositories.UserPreferencesRepository,
	logger *slog.Logger,
) services.UserPreferencesService {
	return &UserPreferencesService{
		prefsRepo: prefsRepo,
		logger:    logger,
	}
}

// getDefaultPreferences returns default preferences with namespaced structure
func (s *UserPreferencesService) getDefaultPreferences(userID uuid.UUID) *models.UserPreferences {
	now := time.Now()
	return &models.UserPreferences{
		UserID: userID,
		Preferences: models.JSONMap{
			"notifications": map[string]interface{}{
				"email":              true,
				"push":               false,
				"marketing_emails":   false,
				"new_company_alerts": true,
				"product_approvals":  true,
				"website_launches":   false,
			},
			"display": map[string]interface{}{
				"theme":     "system",
				"density":   "comfortable",
				"font_size": "medium",
			},
			"default_filters": map[string]interface{}{
				"region":            nil,
				"therapeutic_areas": []string{},
				"company_types":     []string{},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetPreferences retrieves preferences for a user
func (s *UserPreferencesService) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	// If no preferences exist yet, return defaults
	if prefs == nil {
		s.logger.Debug("no preferences found, returning defaults", "user_id", userID)
		prefs = s.getDefaultPreferences(userID)
	}

	return prefs, nil
}

// UpdatePreferences updates user preferences (partial or full update)
func (s *UserPreferencesService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *models.UpdatePreferencesRequest) (*models.UserPreferences, error) {
	if req.Display != nil {
		if err := validateDisplay(req.Display); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}

	// Get existing preferences or create new ones
	existing, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get existing preferences: %w", err)
	}

	// If no existing preferences, start with defaults
	if existing == nil {
		existing = s.getDefaultPreferences(userID)
	}

	// Ensure preferences map is initialized
	if existing.Preferences == nil {
		existing.Preferences = models.JSONMap{}
	}

	// Apply partial updates (only update namespaces that are provided)
	if req.Notifications != nil {
		if err := existing.SetNamespace("notifications", req.Notifications); err != nil {
			return nil, fmt.Errorf("update notifications namespace: %w", err)
		}
	}

	if req.Display != nil {
		if err := existing.SetNamespace("display", req.Display); err != nil {
			return nil, fmt.Errorf("update display namespace: %w", err)
		}
	}

	if req.DefaultFilters != nil {
		if err := existing.SetNamespace("default_filters", req.DefaultFilters); err != nil {
			return nil, fmt.Errorf("update default_filters namespace: %w", err)
		}
	}

	existing.UpdatedAt = time.Now()

	if err := s.prefsRepo.Upsert(ctx, existing); err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}

	s.logger.Info("user preferences updated",
		"user_id", userID,
		"has_notifications", req.Notifications != nil,
		"has_display", req.Display != nil,
		"has_default_filters", req.DefaultFilters != nil,
	)

	return existing, nil
}

func validateDisplay(d *models.DisplayPreferences) error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Theme, validation.In("light", "dark", "system")),
		validation.Field(&d.Density, validation.In("compact", "comfortable", "spacious")),
		validation.Field(&d.FontSize, validation.In("small", "medium", "large")),
	)
}
