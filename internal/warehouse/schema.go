package warehouse

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS income_observations (
		id              TEXT PRIMARY KEY,
		year            TEXT NOT NULL,
		region_code     TEXT NOT NULL,
		ssyk_code       TEXT NOT NULL,
		gender_code     TEXT NOT NULL,
		monthly_salary  DOUBLE PRECISION,
		basic_salary    DOUBLE PRECISION,
		num_employees   DOUBLE PRECISION,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_income_obs_ssyk_year ON income_observations (ssyk_code, year)`,
	`CREATE TABLE IF NOT EXISTS job_ads (
		id                  TEXT PRIMARY KEY,
		source_id           TEXT NOT NULL,
		headline            TEXT NOT NULL DEFAULT '',
		ssyk_code           TEXT NOT NULL,
		employer_name       TEXT NOT NULL DEFAULT '',
		region              TEXT NOT NULL DEFAULT '',
		municipality        TEXT NOT NULL DEFAULT '',
		published_date      TEXT NOT NULL DEFAULT '',
		number_of_vacancies INTEGER NOT NULL DEFAULT 1,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_ads_ssyk ON job_ads (ssyk_code)`,
}

// EnsureSchema creates the warehouse tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("warehouse: ensure schema: %w", err)
		}
	}
	return nil
}
