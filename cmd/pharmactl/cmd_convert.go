package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"toppharma/internal/convert"
)

var assetPrefix string

var convertCmd = &cobra.Command{
	Use:       "convert [all|companies|products|websites|admin|user]",
	Short:     "Convert the TypeScript data modules to JSON and extract inline SVGs",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"all", "companies", "products", "websites", "admin", "user"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "all"
		if len(args) == 1 {
			name = args[0]
		}

		c := convert.NewConverter(cfg.DataDir, assetPrefix, logger)

		jobs := convert.Jobs()
		if name != "all" {
			job, err := convert.Find(name)
			if err != nil {
				return err
			}
			jobs = []convert.Job{job}
		}

		log.Printf("🔄 Converting %s from %s", name, cfg.DataDir)
		results, err := c.ConvertAll(jobs)
		for _, res := range results {
			log.Printf("✅ %s: %d files, %d SVG assets", res.Job, len(res.Written), res.Assets)
			for _, skipped := range res.Skipped {
				log.Printf("⚠️  %s: %s not converted", res.Job, skipped)
			}
		}
		if err != nil {
			return fmt.Errorf("conversion stopped: %w", err)
		}
		log.Printf("🎉 JSON written to %s", c.JSONDir())
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&assetPrefix, "asset-prefix", "/src/data/assets", "URL prefix for extracted SVG references")
}
