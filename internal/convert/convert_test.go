package convert

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companiesSource = `import { Company } from "./types";

export const companies: Company[] = [
  {
    id: "pfizer", // primary key
    name: "Pfizer",
    website: "https://www.pfizer.com",
    logoUrl: '<svg viewBox="0 0 10 10"><rect/></svg>',
    employees: 83000,
    therapeuticAreas: ["oncology", "vaccines",],
  },
  /* placeholder */
  {
    id: "novartis",
    name: "Novartis",
    logoUrl: "/logos/novartis.png",
  },
];

export const therapeuticAreas = [
  { id: "oncology", name: "Oncology" },
];
`

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestExtractArray(t *testing.T) {
	records, err := ExtractArray(companiesSource, "companies")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "pfizer", records[0]["id"])
	assert.Equal(t, "https://www.pfizer.com", records[0]["website"], "// inside strings is kept")
	assert.Equal(t, float64(83000), records[0]["employees"])
	assert.Equal(t, []any{"oncology", "vaccines"}, records[0]["therapeuticAreas"])
	assert.Equal(t, "Novartis", records[1]["name"])
}

func TestExtractArray_NotFound(t *testing.T) {
	_, err := ExtractArray(companiesSource, "products")
	assert.ErrorIs(t, err, ErrArrayNotFound)
}

func TestExtractArray_InvalidLiteral(t *testing.T) {
	_, err := ExtractArray("export const broken = [\n  { id: },\n];\n", "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrArrayNotFound)
}

func TestExtractObject(t *testing.T) {
	src := "export const crawlerConfig = {\n  maxDepth: 3,\n  domains: ['a.com'],\n};\n"
	obj, err := ExtractObject(src, "crawlerConfig")
	require.NoError(t, err)
	assert.Equal(t, float64(3), obj["maxDepth"])
	assert.Equal(t, []any{"a.com"}, obj["domains"])
}

func TestStripComments(t *testing.T) {
	in := "a: 'x // y', // gone\nb: 1 /* gone */, c: \"\\\"//\""
	assert.Equal(t, "a: 'x // y', \nb: 1 , c: \"\\\"//\"", stripComments(in))
}

func TestExtractSVGs(t *testing.T) {
	dir := t.TempDir()
	records := []map[string]any{
		{"id": "a", "logoUrl": "<svg/>"},
		{"id": "b", "logoUrl": "/b.png"},
		{"logoUrl": "<svg>c</svg>"},
	}

	n, err := ExtractSVGs(records, "logoUrl", dir, "/assets/logos")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "/assets/logos/a.svg", records[0]["logoUrl"])
	assert.Equal(t, "/b.png", records[1]["logoUrl"])
	assert.Equal(t, "/assets/logos/2.svg", records[2]["logoUrl"])

	data, err := os.ReadFile(filepath.Join(dir, "a.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestExtractSVGs_MoveToWithPrefix(t *testing.T) {
	dir := t.TempDir()
	records := []map[string]any{{"label": "Users", "icon": "<svg/>"}}

	n, err := extractSVGs(records, SVGRule{Field: "icon", MoveTo: "iconPath", PrefixIDs: true}, "systemStats", dir, "/icons")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "/icons/systemStats-0.svg", records[0]["iconPath"])
	assert.NotContains(t, records[0], "icon")
	assert.FileExists(t, filepath.Join(dir, "systemStats-0.svg"))
}

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestConverter_Run(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "companies.ts", companiesSource)
	c := NewConverter(dir, "/src/data/assets", discard())

	job, err := Find("companies")
	require.NoError(t, err)
	res, err := c.Run(job)
	require.NoError(t, err)
	assert.Len(t, res.Written, 2)
	assert.Equal(t, 1, res.Assets)
	assert.Empty(t, res.Skipped)

	var companies []map[string]any
	readJSON(t, filepath.Join(dir, "json", "companies.json"), &companies)
	assert.Equal(t, "/src/data/assets/logos/pfizer.svg", companies[0]["logoUrl"])
	assert.FileExists(t, filepath.Join(dir, "assets", "logos", "pfizer.svg"))

	raw, err := os.ReadFile(filepath.Join(dir, "json", "therapeuticAreas.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"id\": \"oncology\"")
}

func TestConverter_OptionalExportsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "user.ts", "export const userProfile = {\n  name: 'Ada',\n};\n")
	c := NewConverter(dir, "", discard())

	job, err := Find("user")
	require.NoError(t, err)
	res, err := c.Run(job)
	require.NoError(t, err)
	assert.Len(t, res.Written, 1)
	assert.ElementsMatch(t, []string{"userPreferences", "followedCompanies", "followedTherapeuticAreas", "userNotifications"}, res.Skipped)
}

func TestConverter_ConvertAllStopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "companies.ts", companiesSource)
	writeSource(t, dir, "products.ts", "export const indications = [];\n")
	writeSource(t, dir, "websites.ts", "export const websites = [\n];\n")
	c := NewConverter(dir, "", discard())

	results, err := c.ConvertAll(Jobs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "convert products")
	assert.ErrorIs(t, err, ErrArrayNotFound)
	require.Len(t, results, 1)
	assert.NoFileExists(t, filepath.Join(dir, "json", "websites.json"))
}

func TestFind_Unknown(t *testing.T) {
	_, err := Find("nope")
	assert.Error(t, err)
}
