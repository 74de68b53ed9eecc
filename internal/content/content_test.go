package content

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"toppharma/internal/domain/models"
	"toppharma/internal/testutil"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeFile(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var data []byte
	switch s := v.(type) {
	case string:
		data = []byte(s)
	default:
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestParseFrontmatter(t *testing.T) {
	data, body, err := ParseFrontmatter([]byte("---\nname: Oncology\norder: 2\n---\n# Cancer\n"))
	require.NoError(t, err)
	assert.Equal(t, "Oncology", data["name"])
	assert.Equal(t, 2, data["order"])
	assert.Equal(t, "# Cancer\n", body)

	_, _, err = ParseFrontmatter([]byte("# no frontmatter"))
	assert.ErrorContains(t, err, "must start with '---'")

	_, _, err = ParseFrontmatter([]byte("---\nname: x\n"))
	assert.ErrorContains(t, err, "closing")
}

func TestMigrateCollections(t *testing.T) {
	root := t.TempDir()
	jsonDir := filepath.Join(root, "json")
	contentDir := filepath.Join(root, "content")

	writeFile(t, filepath.Join(jsonDir, "therapeuticAreas.json"), []map[string]any{
		{"id": "oncology", "name": "Oncology"},
	})
	writeFile(t, filepath.Join(jsonDir, "companies.json"), []map[string]any{
		{"id": "pfizer", "slug": "pfizer-inc", "name": "Pfizer"},
		{"name": "Nameless"},
	})

	results, err := MigrateCollections(jsonDir, contentDir, discard())
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, MigrateResult{Collection: "therapeutic-areas", Migrated: 1}, results[0])
	assert.Equal(t, MigrateResult{Collection: "companies", Migrated: 1, Skipped: 1}, results[1])
	assert.True(t, results[2].Missing)
	assert.True(t, results[3].Missing)

	assert.FileExists(t, filepath.Join(contentDir, "therapeutic-areas", "oncology.json"))
	assert.FileExists(t, filepath.Join(contentDir, "companies", "pfizer-inc.json"))
}

func TestLoadCollection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), map[string]any{"id": "b", "name": "B"})
	writeFile(t, filepath.Join(dir, "a.md"), "---\nname: A\n---\nAbout A.\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	entries, err := LoadCollection(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Slug)
	assert.Equal(t, "A", entries[0].Data["name"])
	assert.Equal(t, "About A.\n", entries[0].Body)
	assert.Equal(t, "b", entries[1].Slug)
}

func TestLoadCollection_BadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.json"), "{")
	_, err := LoadCollection(dir)
	assert.ErrorContains(t, err, "parse x.json")
}

func TestVerifyTherapeuticAreas(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "therapeuticAreas.json"), []map[string]any{{"id": "oncology"}, {"id": "vaccines"}})
	writeFile(t, filepath.Join(dir, "companies.json"), []map[string]any{
		{"name": "Pfizer", "therapeuticAreas": []string{"oncology", "dermatology"}},
		{"name": "Moderna", "therapeuticAreas": []string{"dermatology"}},
	})
	writeFile(t, filepath.Join(dir, "products.json"), []map[string]any{
		{"name": "Comirnaty", "therapeuticAreas": []string{"vaccines"}},
		{"name": "Other", "therapeutic_area_ids": []string{"ophthalmology"}},
	})

	report, err := VerifyTherapeuticAreas(dir)
	require.NoError(t, err)
	assert.False(t, report.Valid())
	assert.Equal(t, 2, report.ValidIDs)
	assert.Equal(t, []string{"dermatology"}, report.CompanyInvalidIDs)
	assert.Equal(t, []string{"ophthalmology"}, report.ProductInvalidIDs)
	assert.Len(t, report.Companies, 2)
	assert.Equal(t, InvalidReference{Record: "Other", ID: "ophthalmology"}, report.Products[0])
	assert.Equal(t, []string{"dermatology", "ophthalmology"}, report.Missing())
}

func TestVerifyTherapeuticAreas_MissingFile(t *testing.T) {
	_, err := VerifyTherapeuticAreas(t.TempDir())
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "therapeutic-areas", "oncology.md"), "---\nid: oncology\nname: Oncology\n---\nCancer medicines.\n")
	writeFile(t, filepath.Join(dir, "companies", "pfizer.json"), map[string]any{
		"id": "pfizer", "name": "Pfizer", "founded": "1849", "employees": 79000,
		"stockSymbol": "PFE", "therapeuticAreas": []string{"oncology"},
	})
	writeFile(t, filepath.Join(dir, "products", "comirnaty.json"), map[string]any{
		"id": "comirnaty", "name": "Comirnaty", "companyId": "pfizer", "stage": "market",
	})
	writeFile(t, filepath.Join(dir, "products", "orphan.json"), map[string]any{
		"id": "orphan", "name": "Orphan", "companyId": "nobody", "stage": "approved",
	})
	writeFile(t, filepath.Join(dir, "websites", "pfizer-corporate.json"), map[string]any{
		"id": "pfizer-corporate", "domain": "pfizer.com", "siteName": "Pfizer", "category": "corporate", "companyId": "pfizer",
	})

	repos := Repos{
		TherapeuticAreas: &testutil.TherapeuticAreas{},
		Companies:        &testutil.Companies{},
		Products:         &testutil.Products{},
		Websites:         &testutil.Websites{},
	}
	ctx := context.Background()

	res, err := Seed(ctx, repos, dir, discard())
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{TherapeuticAreas: 1, Companies: 1, Products: 1, Websites: 1, Skipped: 1}, res)

	area, err := repos.TherapeuticAreas.GetByID(ctx, "oncology")
	require.NoError(t, err)
	require.NotNil(t, area.Description)
	assert.Equal(t, "Cancer medicines.", *area.Description)

	company, err := repos.Companies.GetBySlug(ctx, "pfizer")
	require.NoError(t, err)
	require.NotNil(t, company.FoundedYear)
	assert.Equal(t, 1849, *company.FoundedYear)
	assert.True(t, company.PublicCompany)
	assert.Equal(t, []string{"oncology"}, company.TherapeuticAreaIDs)

	product, err := repos.Products.GetBySlug(ctx, "comirnaty")
	require.NoError(t, err)
	assert.Equal(t, company.ID, product.CompanyID)
	assert.Equal(t, models.StageMarketed, product.Stage)

	sites, err := repos.Websites.List(ctx, &company.ID)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "https://pfizer.com", sites[0].URL)

	// Seeding again updates in place
	_, err = Seed(ctx, repos, dir, discard())
	require.NoError(t, err)
	count, err := repos.Companies.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSeed_TherapeuticAreaNameFromSlug(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "therapeutic-areas", "rare-diseases.json"), map[string]any{"id": "rare-diseases"})

	areas := &testutil.TherapeuticAreas{}
	repos := Repos{
		TherapeuticAreas: areas,
		Companies:        &testutil.Companies{},
		Products:         &testutil.Products{},
		Websites:         &testutil.Websites{},
	}
	_, err := Seed(context.Background(), repos, dir, discard())
	require.NoError(t, err)

	area, err := areas.GetBySlug(context.Background(), "rare-diseases")
	require.NoError(t, err)
	assert.Equal(t, "Rare Diseases", area.Name)
}

func TestSeed_MissingCollectionsAreSkipped(t *testing.T) {
	repos := Repos{
		TherapeuticAreas: &testutil.TherapeuticAreas{},
		Companies:        &testutil.Companies{},
		Products:         &testutil.Products{},
		Websites:         &testutil.Websites{},
	}
	res, err := Seed(context.Background(), repos, t.TempDir(), discard())
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{}, res)
}
