package postgres

import (
	"context"
	"fmt"
)

// SchemaStatements returns the CREATE statements for every table, parents first.
func SchemaStatements(t *TableNames) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

		`CREATE TABLE IF NOT EXISTS ` + t.TherapeuticAreas + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			icon TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.DevelopmentPhases + ` (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Companies + ` (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			website TEXT,
			logo_url TEXT,
			description TEXT,
			founded_year INTEGER,
			headquarters TEXT,
			employee_count INTEGER,
			revenue_usd NUMERIC,
			market_cap NUMERIC,
			public_company BOOLEAN NOT NULL DEFAULT false,
			stock_symbol TEXT UNIQUE,
			stock_exchange TEXT,
			ticker TEXT UNIQUE,
			active BOOLEAN NOT NULL DEFAULT true,
			therapeutic_area_ids TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Products + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES ` + t.Companies + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			generic_name TEXT,
			slug VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			stage TEXT NOT NULL,
			development_phase_id BIGINT REFERENCES ` + t.DevelopmentPhases + `(id) ON DELETE SET NULL,
			therapeutic_area_ids TEXT[] NOT NULL DEFAULT '{}',
			indications TEXT[] NOT NULL DEFAULT '{}',
			molecule_type TEXT,
			website TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Websites + ` (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT REFERENCES ` + t.Companies + `(id) ON DELETE CASCADE,
			product_id BIGINT REFERENCES ` + t.Products + `(id) ON DELETE CASCADE,
			url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'corporate',
			region TEXT,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.UserPreferences + ` (
			user_id UUID PRIMARY KEY,
			preferences JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.UserFollows + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			entity_type TEXT NOT NULL CHECK (entity_type IN ('company', 'product', 'therapeutic_area', 'website')),
			entity_id TEXT NOT NULL,
			notify_changes BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, entity_type, entity_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.UserNotifications + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('company', 'product', 'website', 'system')),
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			read BOOLEAN NOT NULL DEFAULT false,
			action_url TEXT,
			entity_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.ImportHistory + ` (
			id UUID PRIMARY KEY,
			data_source TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			status TEXT NOT NULL,
			records_found INTEGER NOT NULL DEFAULT 0,
			records_added INTEGER NOT NULL DEFAULT 0,
			records_updated INTEGER NOT NULL DEFAULT 0,
			records_skipped INTEGER NOT NULL DEFAULT 0,
			api_calls_made INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			config JSONB NOT NULL DEFAULT '{}',
			imported_industries JSONB
		)`,

		`CREATE INDEX IF NOT EXISTS idx_` + t.Products + `_company ON ` + t.Products + `(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + t.Websites + `_company ON ` + t.Websites + `(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + t.UserNotifications + `_user_read ON ` + t.UserNotifications + `(user_id, read)`,
		`CREATE INDEX IF NOT EXISTS idx_` + t.UserFollows + `_entity ON ` + t.UserFollows + `(entity_type, entity_id)`,
	}
}

// EnsureSchema creates any missing tables on the context's database.
func EnsureSchema(ctx context.Context, pools PoolProvider, tables *TableNames) error {
	executor, err := GetExecutor(ctx, pools)
	if err != nil {
		return err
	}
	for _, stmt := range SchemaStatements(tables) {
		if _, err := executor.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DropAllTables drops every table in reverse dependency order.
func DropAllTables(ctx context.Context, pools PoolProvider, tables *TableNames) error {
	executor, err := GetExecutor(ctx, pools)
	if err != nil {
		return err
	}
	all := tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := executor.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}
