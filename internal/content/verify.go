package content

import (
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// InvalidReference is a record tagged with an unknown therapeutic area.
type InvalidReference struct {
	Record string `json:"record"`
	ID     string `json:"id"`
}

// VerifyReport lists therapeutic area ids referenced by companies and
// products that have no entry in therapeuticAreas.json.
type VerifyReport struct {
	ValidIDs          int                `json:"valid_ids"`
	Companies         []InvalidReference `json:"companies"`
	Products          []InvalidReference `json:"products"`
	CompanyInvalidIDs []string           `json:"company_invalid_ids"`
	ProductInvalidIDs []string           `json:"product_invalid_ids"`
}

// Valid reports whether every reference resolved.
func (r *VerifyReport) Valid() bool {
	return len(r.CompanyInvalidIDs) == 0 && len(r.ProductInvalidIDs) == 0
}

// Missing returns the union of invalid ids, sorted.
func (r *VerifyReport) Missing() []string {
	return uniqueSorted(append(append([]string{}, r.CompanyInvalidIDs...), r.ProductInvalidIDs...))
}

// VerifyTherapeuticAreas checks the therapeutic area references of the
// converted companies and products against therapeuticAreas.json.
func VerifyTherapeuticAreas(jsonDir string) (*VerifyReport, error) {
	var areas, companies, products []map[string]any

	var g errgroup.Group
	load := func(name string, dst *[]map[string]any) {
		g.Go(func() error {
			records, err := readRecords(filepath.Join(jsonDir, name))
			if err != nil {
				return err
			}
			*dst = records
			return nil
		})
	}
	load("therapeuticAreas.json", &areas)
	load("companies.json", &companies)
	load("products.json", &products)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	valid := make(map[string]struct{}, len(areas))
	for _, a := range areas {
		if id := str(a, "id"); id != "" {
			valid[id] = struct{}{}
		}
	}

	report := &VerifyReport{ValidIDs: len(valid)}
	report.Companies, report.CompanyInvalidIDs = invalidRefs(companies, valid)
	report.Products, report.ProductInvalidIDs = invalidRefs(products, valid)
	return report, nil
}

func invalidRefs(records []map[string]any, valid map[string]struct{}) ([]InvalidReference, []string) {
	refs := []InvalidReference{}
	var ids []string
	for _, rec := range records {
		for _, id := range strList(rec, "therapeuticAreas", "therapeutic_area_ids") {
			if _, ok := valid[id]; ok {
				continue
			}
			refs = append(refs, InvalidReference{Record: str(rec, "name", "id"), ID: id})
			ids = append(ids, id)
		}
	}
	return refs, uniqueSorted(ids)
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := []string{}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
