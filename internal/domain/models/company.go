package models

import "time"

// Company is a row of the companies table.
type Company struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	Website            *string   `json:"website"`
	LogoURL            *string   `json:"logo_url"`
	Description        *string   `json:"description"`
	FoundedYear        *int      `json:"founded_year"`
	Headquarters       *string   `json:"headquarters"`
	EmployeeCount      *int      `json:"employee_count"`
	RevenueUSD         *float64  `json:"revenue_usd"`
	MarketCapBillions  *float64  `json:"market_cap"`
	PublicCompany      bool      `json:"public_company"`
	StockSymbol        *string   `json:"stock_symbol"`
	StockExchange      *string   `json:"stock_exchange"`
	Ticker             *string   `json:"ticker"`
	Active             bool      `json:"active"`
	TherapeuticAreaIDs []string  `json:"therapeutic_area_ids"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CompanyFinancials are figures taken from annual filings. Nil fields leave
// the stored value alone.
type CompanyFinancials struct {
	RevenueUSD    *float64
	EmployeeCount *int
	UpdatedAt     time.Time
}

// CompanyFilter narrows company listings. Zero values mean "no filter".
type CompanyFilter struct {
	TherapeuticAreaID string
	Search            string
	ActiveOnly        bool
	Limit             int
	Offset            int
}

// ApplyDefaults clamps paging values.
func (f *CompanyFilter) ApplyDefaults() {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
