package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityType is the polymorphic target of a follow.
type EntityType string

const (
	EntityCompany         EntityType = "company"
	EntityProduct         EntityType = "product"
	EntityTherapeuticArea EntityType = "therapeutic_area"
	EntityWebsite         EntityType = "website"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityCompany, EntityProduct, EntityTherapeuticArea, EntityWebsite:
		return true
	}
	return false
}

// UserFollowedEntity records that a user follows a company, product,
// therapeutic area or website. (user_id, entity_type, entity_id) is unique.
type UserFollowedEntity struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	EntityType    EntityType `json:"entity_type"`
	EntityID      string     `json:"entity_id"`
	NotifyChanges bool       `json:"notify_changes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FollowRequest is the body of POST /api/users/me/follows
type FollowRequest struct {
	EntityType    EntityType `json:"entity_type"`
	EntityID      string     `json:"entity_id"`
	NotifyChanges *bool      `json:"notify_changes"`
}
