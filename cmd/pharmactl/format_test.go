package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"toppharma/internal/domain/models"
	"toppharma/internal/secedgar"
)

func TestFormatHistoryEntry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := "all 4 profile batches failed: " + strings.Repeat("x", 100)
	e := models.ImportHistoryEntry{
		ID:           uuid.MustParse("6f1c2c9e-6c1f-4c55-9d0a-0c7b7f3d2a10"),
		StartTime:    now.Add(-3 * time.Hour),
		Status:       models.ImportFailed,
		RecordsFound: 12,
		APICallsMade: 5,
		ErrorMessage: &msg,
	}

	out := formatHistoryEntry(e, now)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "6f1c2c9e-6c1f-4c55-9d0a-0c7b7f3d2a10  Mar 1, 2025 09:00 (3 hours ago)  Failed", lines[0])
	assert.Equal(t, "    found 12, added 0, updated 0, skipped 0, API calls 5", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "..."))
}

func TestFormatNotification(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := models.UserNotification{
		Type:      models.NotificationCompany,
		Title:     "Pfizer Inc. updated",
		Message:   "The profile of Pfizer Inc. (PFE) was refreshed with the latest market data.",
		CreatedAt: now.Add(-2 * time.Minute),
	}

	out := formatNotification(n, now)
	assert.Equal(t, "• Company  Pfizer Inc. updated (2 minutes ago)\n"+
		"    The profile of Pfizer Inc. (PFE) was refreshed with the latest market da...", out)

	n.Read = true
	assert.True(t, strings.HasPrefix(formatNotification(n, now), "  Company"))
}

func TestFormatSECReport(t *testing.T) {
	updated := secedgar.CompanyReport{
		Ticker: "PFE",
		Name:   "PFIZER INC",
		Action: secedgar.ActionUpdated,
		Financials: secedgar.Financials{
			Revenue:   &secedgar.Figure{Value: 63_627_000_000, Unit: "USD", End: "2024-12-31"},
			Employees: &secedgar.Figure{Value: 81000, Unit: "employees"},
		},
	}
	assert.Equal(t, "PFE    updated  PFIZER INC revenue $63,627,000,000 (FY ending 2024-12-31) employees 81,000",
		formatSECReport(updated))

	skipped := secedgar.CompanyReport{Ticker: "ABT", Name: "ABBOTT LABORATORIES", Action: secedgar.ActionSkipped, Reason: "SIC 3845"}
	assert.Equal(t, "ABT    skipped  ABBOTT LABORATORIES - SIC 3845", formatSECReport(skipped))
}
