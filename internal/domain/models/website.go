package models

import "time"

// Website is a company or product web property.
type Website struct {
	ID          int64     `json:"id"`
	CompanyID   *int64    `json:"company_id"`
	ProductID   *int64    `json:"product_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Region      *string   `json:"region"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
