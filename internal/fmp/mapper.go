package fmp

import (
	"fmt"
	"math"
	"strings"
	"time"

	"toppharma/internal/domain/models"
	"toppharma/internal/present"
)

const minFoundedYear = 1800

// MapProfile converts a profile into a company row. The slug carries the
// lowercased symbol so companies with similar names stay unique.
func MapProfile(p Profile, now time.Time) models.Company {
	c := models.Company{
		Name:          p.CompanyName,
		Slug:          profileSlug(p.CompanyName, p.Symbol),
		Description:   optional(p.Description),
		Website:       optional(p.Website),
		LogoURL:       optional(p.Image),
		Headquarters:  headquarters(p.City, p.State, p.Country),
		PublicCompany: true,
		StockSymbol:   optional(p.Symbol),
		StockExchange: optional(p.Exchange),
		Ticker:        optional(p.Symbol),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if mc := p.MarketCapValue(); mc.Valid {
		billions := math.Round(mc.Value/1e9*100) / 100
		c.MarketCapBillions = &billions
	}
	if p.FullTimeEmployees.Valid {
		n := int(p.FullTimeEmployees.Value)
		c.EmployeeCount = &n
	}
	if year, ok := ipoYear(p.IPODate, now); ok {
		c.FoundedYear = &year
	}

	return c
}

// MapScreenerResult builds a minimal company from a screener hit, used
// when the profile request for its batch failed.
func MapScreenerResult(r ScreenerResult, now time.Time) models.Company {
	c := models.Company{
		Name:          r.CompanyName,
		Slug:          profileSlug(r.CompanyName, r.Symbol),
		Headquarters:  optional(r.Country),
		PublicCompany: true,
		StockSymbol:   optional(r.Symbol),
		StockExchange: optional(r.Exchange),
		Ticker:        optional(r.Symbol),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.MarketCap.Valid {
		billions := math.Round(r.MarketCap.Value/1e9*100) / 100
		c.MarketCapBillions = &billions
	}
	return c
}

func profileSlug(name, symbol string) string {
	base := present.Slug(name)
	if symbol == "" {
		return base
	}
	return fmt.Sprintf("%s-%s", base, strings.ToLower(symbol))
}

func headquarters(city, state, country string) *string {
	if country == "" {
		return nil
	}
	var hq string
	switch {
	case city != "" && state != "":
		hq = fmt.Sprintf("%s, %s, %s", city, state, country)
	case city != "":
		hq = fmt.Sprintf("%s, %s", city, country)
	default:
		hq = country
	}
	return &hq
}

func ipoYear(ipoDate string, now time.Time) (int, bool) {
	if ipoDate == "" {
		return 0, false
	}
	t, err := time.Parse("2006-01-02", ipoDate)
	if err != nil {
		return 0, false
	}
	year := t.Year()
	if year < minFoundedYear || year > now.Year() {
		return 0, false
	}
	return year, true
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
