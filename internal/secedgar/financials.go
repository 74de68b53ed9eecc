package secedgar

import "sort"

// Figure is one annual value and where it came from.
type Figure struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	End     string  `json:"end"`
	Filed   string  `json:"filed"`
	Concept string  `json:"concept"`
}

// Financials are the latest 10-K figures for a filer. Missing concepts are nil.
type Financials struct {
	Revenue     *Figure `json:"revenue,omitempty"`
	NetIncome   *Figure `json:"net_income,omitempty"`
	Assets      *Figure `json:"assets,omitempty"`
	Liabilities *Figure `json:"liabilities,omitempty"`
	Employees   *Figure `json:"employees,omitempty"`
}

type conceptRef struct {
	taxonomy string
	name     string
}

// Filers moved between revenue tags over the years; the newest period wins.
var (
	revenueConcepts = []conceptRef{
		{"us-gaap", "Revenues"},
		{"us-gaap", "RevenueFromContractWithCustomerExcludingAssessedTax"},
		{"us-gaap", "SalesRevenueNet"},
	}
	netIncomeConcepts   = []conceptRef{{"us-gaap", "NetIncomeLoss"}}
	assetsConcepts      = []conceptRef{{"us-gaap", "Assets"}}
	liabilitiesConcepts = []conceptRef{{"us-gaap", "Liabilities"}}
	employeeConcepts    = []conceptRef{
		{"dei", "EntityNumberOfEmployees"},
		{"us-gaap", "EntityNumberOfEmployees"},
	}
)

// ExtractFinancials picks the most recent annual (10-K, full fiscal year)
// value of each key concept.
func ExtractFinancials(facts *CompanyFacts) Financials {
	if facts == nil {
		return Financials{}
	}
	return Financials{
		Revenue:     latestAnnual(facts, revenueConcepts),
		NetIncome:   latestAnnual(facts, netIncomeConcepts),
		Assets:      latestAnnual(facts, assetsConcepts),
		Liabilities: latestAnnual(facts, liabilitiesConcepts),
		Employees:   latestAnnual(facts, employeeConcepts),
	}
}

func latestAnnual(facts *CompanyFacts, refs []conceptRef) *Figure {
	var best *Figure
	for _, ref := range refs {
		concept, ok := facts.Facts[ref.taxonomy][ref.name]
		if !ok {
			continue
		}
		units := make([]string, 0, len(concept.Units))
		for unit := range concept.Units {
			units = append(units, unit)
		}
		sort.Strings(units)

		for _, unit := range units {
			for _, v := range concept.Units[unit] {
				if v.Form != "10-K" || (v.FP != "" && v.FP != "FY") {
					continue
				}
				if best != nil && (v.End < best.End || (v.End == best.End && v.Filed <= best.Filed)) {
					continue
				}
				best = &Figure{Value: v.Val, Unit: unit, End: v.End, Filed: v.Filed, Concept: ref.name}
			}
		}
	}
	return best
}
