package fmp

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Numeric decodes a JSON number, a numeric string ("12,500"), or null.
type Numeric struct {
	Value float64
	Valid bool
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	*n = Numeric{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Upstream occasionally sends "" or "N/A"
		return nil
	}
	*n = Numeric{Value: v, Valid: true}
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Profile is a company profile from the /profile endpoint.
type Profile struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	MktCap            Numeric `json:"mktCap"`
	MarketCap         Numeric `json:"marketCap"`
	CompanyName       string  `json:"companyName"`
	Currency          string  `json:"currency"`
	CIK               string  `json:"cik"`
	Exchange          string  `json:"exchange"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Industry          string  `json:"industry"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	CEO               string  `json:"ceo"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	FullTimeEmployees Numeric `json:"fullTimeEmployees"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	Image             string  `json:"image"`
	IPODate           string  `json:"ipoDate"`
	IsActivelyTrading bool    `json:"isActivelyTrading"`
}

// MarketCapValue returns whichever market cap field the API populated.
func (p Profile) MarketCapValue() Numeric {
	if p.MktCap.Valid {
		return p.MktCap
	}
	return p.MarketCap
}

// ScreenerResult is one hit from /company-screener.
type ScreenerResult struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	MarketCap         Numeric `json:"marketCap"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	Price             float64 `json:"price"`
	Exchange          string  `json:"exchange"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Country           string  `json:"country"`
	IsEtf             bool    `json:"isEtf"`
	IsActivelyTrading bool    `json:"isActivelyTrading"`
}

// RateLimit mirrors the X-Rate-Limit-* response headers. Reset is unix seconds.
type RateLimit struct {
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
	Total     int   `json:"total"`
}

// ScreenResult aggregates a multi-industry screen.
type ScreenResult struct {
	Companies  []ScreenerResult `json:"companies"`
	TotalFound int              `json:"totalFound"`
	Industries map[string]int   `json:"industries"`
}

// DefaultIndustries are screened when an import names none. The screener
// spells the dash as " - "; see NormalizeIndustry.
var DefaultIndustries = []string{
	"Biotechnology",
	"Drug Manufacturers - Specialty & Generic",
	"Drug Manufacturers - General",
}

var industryDashes = strings.NewReplacer("\u2014", " - ", "\u2013", " - ")

// NormalizeIndustry rewrites em and en dashes in an industry name to the
// " - " form the screener matches on.
func NormalizeIndustry(industry string) string {
	return strings.Join(strings.Fields(industryDashes.Replace(industry)), " ")
}
