package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// UserPreferences represents user-specific settings.
// All preferences are stored in a single JSONB column with namespaced structure:
// {notifications, display, default_filters}
type UserPreferences struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Preferences JSONMap   `json:"preferences" db:"preferences"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NotificationPreferences represents the notifications namespace
type NotificationPreferences struct {
	Email            *bool `json:"email"`
	Push             *bool `json:"push"`
	MarketingEmails  *bool `json:"marketing_emails"`
	NewCompanyAlerts *bool `json:"new_company_alerts"`
	ProductApprovals *bool `json:"product_approvals"`
	WebsiteLaunches  *bool `json:"website_launches"`
}

// DisplayPreferences represents the display namespace
type DisplayPreferences struct {
	Theme    string `json:"theme"`     // "light", "dark", "system"
	Density  string `json:"density"`   // "compact", "comfortable", "spacious"
	FontSize string `json:"font_size"` // "small", "medium", "large"
}

// DefaultFilters represents the default_filters namespace
type DefaultFilters struct {
	Region           *string  `json:"region"`
	TherapeuticAreas []string `json:"therapeutic_areas"`
	CompanyTypes     []string `json:"company_types"`
}

// UpdatePreferencesRequest supports partial updates - only provided namespaces are replaced
type UpdatePreferencesRequest struct {
	Notifications  *NotificationPreferences `json:"notifications"`
	Display        *DisplayPreferences      `json:"display"`
	DefaultFilters *DefaultFilters          `json:"default_filters"`
}

// GetDisplay extracts the display namespace with type safety
func (up *UserPreferences) GetDisplay() (*DisplayPreferences, error) {
	display := &DisplayPreferences{Theme: "system", Density: "comfortable", FontSize: "medium"}
	if err := up.getNamespace("display", display); err != nil {
		return nil, err
	}
	return display, nil
}

// GetNotifications extracts the notifications namespace
func (up *UserPreferences) GetNotifications() (*NotificationPreferences, error) {
	notifications := &NotificationPreferences{}
	if err := up.getNamespace("notifications", notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// SetNamespace stores any namespace struct as a generic map
func (up *UserPreferences) SetNamespace(key string, value interface{}) error {
	if up.Preferences == nil {
		up.Preferences = JSONMap{}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	up.Preferences[key] = m
	return nil
}

func (up *UserPreferences) getNamespace(key string, dest interface{}) error {
	if up.Preferences == nil {
		return nil
	}
	raw, ok := up.Preferences[key]
	if !ok || raw == nil {
		return nil
	}

	// Re-marshal to ensure type safety
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
