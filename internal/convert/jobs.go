package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Export is one exported literal of a data module.
type Export struct {
	Name     string
	Object   bool // `{ ... }` literal instead of an array
	Required bool // a missing or broken export fails the job
	SVG      *SVGRule
}

// Job converts one TypeScript data module.
type Job struct {
	Name    string
	Source  string // file name inside the data directory
	Exports []Export
}

// Jobs returns the conversion jobs in the order ConvertAll runs them.
func Jobs() []Job {
	icon := func() *SVGRule { return &SVGRule{Field: "icon", Dir: "icons", MoveTo: "iconPath", PrefixIDs: true} }
	return []Job{
		{
			Name:   "companies",
			Source: "companies.ts",
			Exports: []Export{
				{Name: "companies", Required: true, SVG: &SVGRule{Field: "logoUrl", Dir: "logos"}},
				{Name: "therapeuticAreas"},
			},
		},
		{
			Name:   "products",
			Source: "products.ts",
			Exports: []Export{
				{Name: "products", Required: true, SVG: &SVGRule{Field: "imageUrl", Dir: "products"}},
				{Name: "indications"},
			},
		},
		{
			Name:   "websites",
			Source: "websites.ts",
			Exports: []Export{
				{Name: "websites", Required: true, SVG: &SVGRule{Field: "screenshotUrl", Dir: "screenshots"}},
				{Name: "websiteCategories"},
				{Name: "regions"},
			},
		},
		{
			Name:   "admin",
			Source: "admin.ts",
			Exports: []Export{
				{Name: "systemStats", SVG: icon()},
				{Name: "recentCrawlerJobs"},
				{Name: "apiEndpoints", SVG: icon()},
				{Name: "crawlerConfig", Object: true},
				{Name: "systemLogs"},
				{Name: "userManagement", Object: true},
			},
		},
		{
			Name:   "user",
			Source: "user.ts",
			Exports: []Export{
				{Name: "userProfile", Object: true},
				{Name: "userPreferences", Object: true},
				{Name: "followedCompanies"},
				{Name: "followedTherapeuticAreas"},
				{Name: "userNotifications"},
			},
		},
	}
}

// Result summarises one job run.
type Result struct {
	Job     string
	Written []string // JSON files
	Assets  int      // SVG files
	Skipped []string // optional exports that were missing or invalid
}

// Converter runs jobs against a data directory laid out as
// <data>/<module>.ts, <data>/json and <data>/assets.
type Converter struct {
	dataDir   string
	urlPrefix string
	logger    *slog.Logger
}

// NewConverter creates a converter. Asset references in the JSON output
// are written as <urlPrefix>/<kind>/<file>.svg.
func NewConverter(dataDir, urlPrefix string, logger *slog.Logger) *Converter {
	if urlPrefix == "" {
		urlPrefix = filepath.ToSlash(filepath.Join(dataDir, "assets"))
	}
	if !strings.HasPrefix(urlPrefix, "/") {
		urlPrefix = "/" + urlPrefix
	}
	return &Converter{dataDir: dataDir, urlPrefix: urlPrefix, logger: logger}
}

// JSONDir is where converted files are written.
func (c *Converter) JSONDir() string { return filepath.Join(c.dataDir, "json") }

// AssetsDir is where extracted SVG files are written.
func (c *Converter) AssetsDir() string { return filepath.Join(c.dataDir, "assets") }

// Run converts a single job.
func (c *Converter) Run(job Job) (*Result, error) {
	src, err := os.ReadFile(filepath.Join(c.dataDir, job.Source))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", job.Source, err)
	}
	if err := os.MkdirAll(c.JSONDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create json dir: %w", err)
	}

	res := &Result{Job: job.Name}
	source := string(src)
	for _, exp := range job.Exports {
		value, assets, err := c.convertExport(source, exp)
		if err != nil {
			if exp.Required {
				return res, fmt.Errorf("%s: %w", job.Source, err)
			}
			c.logger.Warn("skipping export", "job", job.Name, "export", exp.Name, "error", err)
			res.Skipped = append(res.Skipped, exp.Name)
			continue
		}

		out := filepath.Join(c.JSONDir(), exp.Name+".json")
		if err := writeJSON(out, value); err != nil {
			return res, err
		}
		res.Written = append(res.Written, out)
		res.Assets += assets
		c.logger.Info("converted", "job", job.Name, "export", exp.Name, "output", out, "assets", assets)
	}
	return res, nil
}

func (c *Converter) convertExport(source string, exp Export) (any, int, error) {
	if exp.Object {
		obj, err := ExtractObject(source, exp.Name)
		return obj, 0, err
	}

	records, err := ExtractArray(source, exp.Name)
	if err != nil {
		return nil, 0, err
	}
	if exp.SVG == nil {
		return records, 0, nil
	}
	dir := filepath.Join(c.AssetsDir(), exp.SVG.Dir)
	prefix := c.urlPrefix + "/" + exp.SVG.Dir
	n, err := extractSVGs(records, *exp.SVG, exp.Name, dir, prefix)
	if err != nil {
		return nil, n, err
	}
	return records, n, nil
}

// ConvertAll runs jobs in order and stops at the first failure.
func (c *Converter) ConvertAll(jobs []Job) ([]*Result, error) {
	results := make([]*Result, 0, len(jobs))
	for _, job := range jobs {
		res, err := c.Run(job)
		if err != nil {
			return results, fmt.Errorf("convert %s: %w", job.Name, err)
		}
		results = append(results, res)
	}
	c.logger.Info("all data converted", "jobs", len(results))
	return results, nil
}

// Find returns the job with the given name.
func Find(name string) (Job, error) {
	for _, job := range Jobs() {
		if job.Name == name {
			return job, nil
		}
	}
	return Job{}, errors.New("unknown conversion job: " + name)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
