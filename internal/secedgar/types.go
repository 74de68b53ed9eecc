package secedgar

import (
	"fmt"
	"strings"
)

// PharmaSICCodes are the Standard Industrial Classification codes for
// pharmaceutical preparations, diagnostic substances and biologics.
var PharmaSICCodes = map[string]string{
	"2834": "Pharmaceutical Preparations",
	"2835": "In Vitro & In Vivo Diagnostic Substances",
	"2836": "Biological Products, Except Diagnostic Substances",
}

// IsPharmaSIC reports whether sic is one of PharmaSICCodes.
func IsPharmaSIC(sic string) bool {
	_, ok := PharmaSICCodes[strings.TrimSpace(sic)]
	return ok
}

// KnownCIKs are large pharma filers resolved without the ticker file.
var KnownCIKs = map[string]string{
	"PFE":  "0000078003",
	"JNJ":  "0000200406",
	"MRK":  "0000310158",
	"ABBV": "0001551152",
	"LLY":  "0000059478",
	"BMY":  "0000014272",
	"AMGN": "0000318154",
	"GILD": "0000882095",
	"NVS":  "0001114448",
	"MRNA": "0001682852",
}

// Submissions is the data.sec.gov submissions document for one filer.
type Submissions struct {
	CIK            string   `json:"cik"`
	Name           string   `json:"name"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sicDescription"`
	Tickers        []string `json:"tickers"`
	Exchanges      []string `json:"exchanges"`
	Filings        struct {
		Recent RecentFilings `json:"recent"`
	} `json:"filings"`
}

// RecentFilings holds parallel arrays, one entry per filing.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// Filing is one entry of RecentFilings.
type Filing struct {
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	Form            string `json:"form"`
	URL             string `json:"url"`
}

// ExchangeFor returns the exchange listed beside ticker, or the first one.
func (s *Submissions) ExchangeFor(ticker string) string {
	for i, t := range s.Tickers {
		if strings.EqualFold(t, ticker) && i < len(s.Exchanges) {
			return s.Exchanges[i]
		}
	}
	if len(s.Exchanges) > 0 {
		return s.Exchanges[0]
	}
	return ""
}

// LatestFiling returns the most recently filed entry of the given form,
// nil when there is none. Filing dates are ISO so they compare as strings.
func (s *Submissions) LatestFiling(form string) *Filing {
	r := s.Filings.Recent
	var latest *Filing
	for i, f := range r.Form {
		if f != form || i >= len(r.FilingDate) || i >= len(r.AccessionNumber) {
			continue
		}
		if latest != nil && r.FilingDate[i] <= latest.FilingDate {
			continue
		}
		latest = &Filing{
			AccessionNumber: r.AccessionNumber[i],
			FilingDate:      r.FilingDate[i],
			Form:            f,
		}
		if i < len(r.PrimaryDocument) {
			latest.URL = fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
				DefaultWWWURL,
				strings.TrimLeft(s.CIK, "0"),
				strings.ReplaceAll(r.AccessionNumber[i], "-", ""),
				r.PrimaryDocument[i])
		}
	}
	return latest
}

// CompanyFacts is the XBRL company facts document, keyed by taxonomy
// ("us-gaap", "dei") and then concept.
type CompanyFacts struct {
	CIK        int64                         `json:"cik"`
	EntityName string                        `json:"entityName"`
	Facts      map[string]map[string]Concept `json:"facts"`
}

// Concept lists reported values per unit ("USD", "employees").
type Concept struct {
	Label string                 `json:"label"`
	Units map[string][]FactValue `json:"units"`
}

type FactValue struct {
	Start string  `json:"start,omitempty"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
}
