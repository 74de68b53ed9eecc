package models

import "time"

// TherapeuticArea is a medical specialty used to tag companies and products.
// The ID is a stable string key ("oncology") referenced from company and
// product therapeutic_area_ids.
type TherapeuticArea struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Icon        *string   `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TherapeuticAreaDetail is a therapeutic area with the records tagged with it.
type TherapeuticAreaDetail struct {
	TherapeuticArea
	Companies []Company `json:"companies"`
	Products  []Product `json:"products"`
}
