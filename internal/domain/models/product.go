package models

import "time"

// ProductStage is the development stage of a product.
type ProductStage string

const (
	StagePreclinical ProductStage = "preclinical"
	StagePhase1      ProductStage = "phase1"
	StagePhase2      ProductStage = "phase2"
	StagePhase3      ProductStage = "phase3"
	StageSubmitted   ProductStage = "submitted"
	StageApproved    ProductStage = "approved"
	StageMarketed    ProductStage = "marketed"
)

var stageNames = map[ProductStage]string{
	StagePreclinical: "Preclinical",
	StagePhase1:      "Phase 1",
	StagePhase2:      "Phase 2",
	StagePhase3:      "Phase 3",
	StageSubmitted:   "Submitted",
	StageApproved:    "Approved",
	StageMarketed:    "Marketed",
}

// StageName returns the display name of a stage, or the raw value if unknown.
func StageName(stage ProductStage) string {
	if name, ok := stageNames[stage]; ok {
		return name
	}
	return string(stage)
}

// Valid reports whether the stage is one of the known stages.
func (s ProductStage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// Product is a row of the products table.
type Product struct {
	ID                 int64        `json:"id"`
	CompanyID          int64        `json:"company_id"`
	Name               string       `json:"name"`
	GenericName        *string      `json:"generic_name"`
	Slug               string       `json:"slug"`
	Description        *string      `json:"description"`
	Stage              ProductStage `json:"stage"`
	DevelopmentPhaseID *int64       `json:"development_phase_id"`
	TherapeuticAreaIDs []string     `json:"therapeutic_area_ids"`
	Indications        []string     `json:"indications"`
	MoleculeType       *string      `json:"molecule_type"`
	Website            *string      `json:"website"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CompanyID         int64
	TherapeuticAreaID string
	Stage             ProductStage
	Limit             int
	Offset            int
}

func (f *ProductFilter) ApplyDefaults() {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
