package models

import (
	"time"

	"github.com/google/uuid"
)

type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ImportConfig controls an FMP company import. RequestDelay is in milliseconds.
type ImportConfig struct {
	BatchSize          int      `json:"batchSize" yaml:"batch_size"`
	MaxCompanies       *int     `json:"maxCompanies,omitempty" yaml:"max_companies"`
	Industries         []string `json:"industries" yaml:"industries"`
	IncludeInactive    bool     `json:"includeInactive" yaml:"include_inactive"`
	RequestDelay       int      `json:"requestDelay" yaml:"request_delay"`
	UpdateIntervalDays *int     `json:"updateIntervalDays,omitempty" yaml:"update_interval_days"`
}

// RequestDelayDuration converts the millisecond delay.
func (c ImportConfig) RequestDelayDuration() time.Duration {
	return time.Duration(c.RequestDelay) * time.Millisecond
}

// ImportHistoryEntry tracks one run of a data import.
type ImportHistoryEntry struct {
	ID                 uuid.UUID      `json:"id"`
	DataSource         string         `json:"dataSource"`
	StartTime          time.Time      `json:"startTime"`
	EndTime            *time.Time     `json:"endTime,omitempty"`
	Status             ImportStatus   `json:"status"`
	RecordsFound       int            `json:"recordsFound"`
	RecordsAdded       int            `json:"recordsAdded"`
	RecordsUpdated     int            `json:"recordsUpdated"`
	RecordsSkipped     int            `json:"recordsSkipped"`
	APICallsMade       int            `json:"apiCallsMade"`
	ErrorMessage       *string        `json:"errorMessage,omitempty"`
	Config             ImportConfig   `json:"config"`
	ImportedIndustries map[string]int `json:"importedIndustries,omitempty"`
}
