package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"toppharma/internal/domain/models"
)

// LoadConfig reads an import config from a YAML file:
//
//	batch_size: 5
//	max_companies: 100
//	request_delay: 2000
//	update_interval_days: 7
//	include_inactive: false
//	industries:
//	  - Biotechnology
//
// Unset fields get their defaults and the result is validated.
func LoadConfig(path string) (models.ImportConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ImportConfig{}, fmt.Errorf("read import config: %w", err)
	}

	var cfg models.ImportConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.ImportConfig{}, fmt.Errorf("parse import config %s: %w", path, err)
	}

	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return models.ImportConfig{}, err
	}
	return cfg, nil
}
