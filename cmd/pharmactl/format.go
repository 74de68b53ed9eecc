package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"toppharma/internal/domain/models"
	"toppharma/internal/present"
	"toppharma/internal/secedgar"
)

const messagePreviewLength = 72

func formatHistoryEntry(e models.ImportHistoryEntry, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s (%s)  %s\n",
		e.ID,
		present.FormatDate(e.StartTime, "Jan 2, 2006 15:04"),
		present.FormatRelativeTime(e.StartTime, now),
		present.Title(string(e.Status)),
	)
	fmt.Fprintf(&b, "    found %d, added %d, updated %d, skipped %d, API calls %d",
		e.RecordsFound, e.RecordsAdded, e.RecordsUpdated, e.RecordsSkipped, e.APICallsMade)
	if e.ErrorMessage != nil {
		fmt.Fprintf(&b, "\n    error: %s", present.Truncate(*e.ErrorMessage, messagePreviewLength))
	}
	return b.String()
}

func formatNotification(n models.UserNotification, now time.Time) string {
	mark := "•"
	if n.Read {
		mark = " "
	}
	return fmt.Sprintf("%s %-8s %s (%s)\n    %s",
		mark,
		present.CapitalizeFirst(string(n.Type)),
		n.Title,
		present.FormatRelativeTime(n.CreatedAt, now),
		present.Truncate(n.Message, messagePreviewLength),
	)
}

// formatSECReport renders one ticker of an SEC sync.
func formatSECReport(c secedgar.CompanyReport) string {
	line := fmt.Sprintf("%-6s %-8s %s", c.Ticker, c.Action, c.Name)
	if f := c.Financials.Revenue; f != nil && f.Unit == "USD" {
		line += fmt.Sprintf(" revenue %s (FY ending %s)", present.FormatCurrency(f.Value), f.End)
	}
	if f := c.Financials.Employees; f != nil {
		line += " employees " + humanize.Comma(int64(f.Value))
	}
	if c.Reason != "" {
		line += " - " + c.Reason
	}
	return line
}
