// Package content manages the per-record JSON and Markdown collections
// derived from the converted data files, and seeds the database from them.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Collection maps a converted JSON file onto a content directory.
type Collection struct {
	Name   string // directory under the content root
	Source string // file under the json directory
}

// Collections lists the migrated collections in dependency order.
var Collections = []Collection{
	{Name: "therapeutic-areas", Source: "therapeuticAreas.json"},
	{Name: "companies", Source: "companies.json"},
	{Name: "products", Source: "products.json"},
	{Name: "websites", Source: "websites.json"},
}

// MigrateResult reports one collection of a migration.
type MigrateResult struct {
	Collection string `json:"collection"`
	Migrated   int    `json:"migrated"`
	Skipped    int    `json:"skipped"`
	Missing    bool   `json:"missing"`
}

// Entry is one record of a collection.
type Entry struct {
	Slug string
	Data map[string]any
	Body string // Markdown body, empty for JSON entries
}

// MigrateCollections writes each record of the converted JSON files to
// <contentDir>/<collection>/<slug>.json. A missing source file is logged
// and reported, not treated as an error.
func MigrateCollections(jsonDir, contentDir string, logger *slog.Logger) ([]MigrateResult, error) {
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}

	results := make([]MigrateResult, 0, len(Collections))
	for _, col := range Collections {
		res := MigrateResult{Collection: col.Name}

		records, err := readRecords(filepath.Join(jsonDir, col.Source))
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("source file not found", "collection", col.Name, "file", col.Source)
			res.Missing = true
			results = append(results, res)
			continue
		}
		if err != nil {
			return results, err
		}

		target := filepath.Join(contentDir, col.Name)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return results, fmt.Errorf("create %s: %w", target, err)
		}

		for i, rec := range records {
			slug := recordSlug(rec)
			if slug == "" {
				logger.Warn("record has no slug or id", "collection", col.Name, "index", i)
				res.Skipped++
				continue
			}
			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return results, fmt.Errorf("encode %s/%s: %w", col.Name, slug, err)
			}
			if err := os.WriteFile(filepath.Join(target, slug+".json"), data, 0o644); err != nil {
				return results, fmt.Errorf("write %s/%s: %w", col.Name, slug, err)
			}
			res.Migrated++
		}

		logger.Info("collection migrated", "collection", col.Name, "migrated", res.Migrated, "skipped", res.Skipped)
		results = append(results, res)
	}
	return results, nil
}

// LoadCollection reads every .json and .md entry of a collection directory,
// sorted by slug. Markdown entries take their fields from the frontmatter.
func LoadCollection(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", filepath.Base(dir), err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := filepath.Ext(f.Name())
		if ext != ".json" && ext != ".md" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, err
		}

		e := Entry{Slug: strings.TrimSuffix(f.Name(), ext)}
		switch ext {
		case ".json":
			if err := json.Unmarshal(raw, &e.Data); err != nil {
				return nil, fmt.Errorf("parse %s: %w", f.Name(), err)
			}
		case ".md":
			e.Data, e.Body, err = ParseFrontmatter(raw)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", f.Name(), err)
			}
		}
		if s := recordSlug(e.Data); s != "" {
			e.Slug = s
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return entries, nil
}

func readRecords(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// recordSlug is the record's slug, falling back to its id.
func recordSlug(rec map[string]any) string {
	if s := str(rec, "slug"); s != "" {
		return s
	}
	return str(rec, "id")
}
