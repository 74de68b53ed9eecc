package present

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		layout string
		want   string
	}{
		{"time value", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), "", "March 15, 2024"},
		{"rfc3339 string", "2023-12-01T08:30:00Z", "", "December 1, 2023"},
		{"date string", "2022-07-04", "", "July 4, 2022"},
		{"unix millis", int64(1700000000000), "2006-01-02", "2023-11-14"},
		{"custom layout", "2024-01-05", "Jan 2006", "Jan 2024"},
		{"garbage", "not a date", "", InvalidDate},
		{"nil", nil, "", InvalidDate},
		{"zero time", time.Time{}, "", InvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.value, tt.layout))
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{1 * time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{1 * time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{29 * 24 * time.Hour, "29 days ago"},
		{30 * 24 * time.Hour, "1 month ago"},
		{200 * 24 * time.Hour, "6 months ago"},
		{360 * 24 * time.Hour, "1 year ago"},
		{800 * 24 * time.Hour, "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelativeTime(now.Add(-tt.ago), now))
		})
	}

	assert.Equal(t, InvalidDate, FormatRelativeTime("nope", now))
}

func TestAssets(t *testing.T) {
	a := NewAssets("")
	assert.Equal(t, "/assets/companies/pfizer/logo.svg", a.CompanyLogo("pfizer"))
	assert.Equal(t, "/assets/companies/pfizer/header.jpg", a.CompanyHeader("pfizer"))
	assert.Equal(t, "/assets/websites/12/screenshot.jpg", a.WebsiteScreenshot("12"))
	assert.Equal(t, "/assets/icons/pill.svg", a.Icon("pill"))
	assert.Equal(t, "/assets/therapeutic-areas/oncology/icon.svg", a.TherapeuticAreaIcon("oncology"))
	assert.Equal(t, "/assets/placeholders/product.svg", a.Placeholder(PlaceholderProduct))

	url, ok := a.ProductImage("keytruda")
	assert.False(t, ok)
	assert.Empty(t, url)

	cdn := NewAssets("https://cdn.example.com/assets/")
	assert.Equal(t, "https://cdn.example.com/assets/icons/x.svg", cdn.Icon("x"))
}

func TestHydrationDirective(t *testing.T) {
	assert.Equal(t, HydrateLoad, HydrationDirective("mainNav"))
	assert.Equal(t, HydrateVisible, HydrationDirective("chart"))
	assert.Equal(t, HydrateIdle, HydrationDirective("button"))
	assert.Equal(t, HydrateIdle, HydrationDirective("somethingElse"))
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Pfizer Inc.":            "pfizer-inc",
		"  Johnson & Johnson  ":  "johnson-johnson",
		"Bristol_Myers--Squibb":  "bristol-myers-squibb",
		"Hoffmann-La Roche":      "hoffmann-la-roche",
		"Laboratoires Servier é": "laboratoires-servier-e",
		"---":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
	assert.Equal(t, "", CapitalizeFirst(""))
	assert.Equal(t, "Oncology", CapitalizeFirst("oncology"))

	assert.Equal(t, "Rare Diseases", Title("rare diseases"))
	assert.Equal(t, "Completed", Title("COMPLETED"))

	assert.Equal(t, "$1,234,568", FormatCurrency(1234567.8))
	assert.Equal(t, "$0", FormatCurrency(0))
	assert.Equal(t, "-$5,000", FormatCurrency(-5000))
}
