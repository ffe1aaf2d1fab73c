package warehouse

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"arbetsdata/internal/store"
)

// surrogateKey derives a stable row identity from the natural key columns,
// so reruns of the pipeline update rows in place instead of duplicating
// them.
func surrogateKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

const upsertIncomeSQL = `
INSERT INTO income_observations
	(id, year, region_code, ssyk_code, gender_code, monthly_salary, basic_salary, num_employees, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (id) DO UPDATE SET
	monthly_salary = EXCLUDED.monthly_salary,
	basic_salary   = EXCLUDED.basic_salary,
	num_employees  = EXCLUDED.num_employees,
	updated_at     = now()`

// UpsertIncome writes income rows in one transaction and reports how many
// rows were touched.
func UpsertIncome(ctx context.Context, db DB, rows []store.IncomeRow) (int64, error) {
	if db == nil {
		return 0, fmt.Errorf("nil db")
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("warehouse: begin income upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, r := range rows {
		id := surrogateKey("income", r.Year, r.RegionCode, r.SSYKCode, r.GenderCode)
		n, err := tx.Exec(ctx, upsertIncomeSQL,
			id, r.Year, r.RegionCode, r.SSYKCode, r.GenderCode,
			r.MonthlySalary, r.BasicSalary, r.NumEmployees)
		if err != nil {
			return 0, fmt.Errorf("warehouse: upsert income %s/%s/%s: %w", r.Year, r.RegionCode, r.SSYKCode, err)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("warehouse: commit income upsert: %w", err)
	}
	return total, nil
}

const upsertJobAdSQL = `
INSERT INTO job_ads
	(id, source_id, headline, ssyk_code, employer_name, region, municipality, published_date, number_of_vacancies, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (id) DO UPDATE SET
	headline            = EXCLUDED.headline,
	employer_name       = EXCLUDED.employer_name,
	region              = EXCLUDED.region,
	municipality        = EXCLUDED.municipality,
	published_date      = EXCLUDED.published_date,
	number_of_vacancies = EXCLUDED.number_of_vacancies,
	updated_at          = now()`

// UpsertJobAds writes ad rows in one transaction, keyed on the upstream ad
// ID so re-fetched ads update in place.
func UpsertJobAds(ctx context.Context, db DB, rows []store.JobAdRow) (int64, error) {
	if db == nil {
		return 0, fmt.Errorf("nil db")
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("warehouse: begin job ads upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, r := range rows {
		id := surrogateKey("job_ad", r.ID)
		n, err := tx.Exec(ctx, upsertJobAdSQL,
			id, r.ID, r.Headline, r.SSYKCode, r.EmployerName,
			r.Region, r.Municipality, r.PublishedDate, r.NumberOfVacancies)
		if err != nil {
			return 0, fmt.Errorf("warehouse: upsert job ad %s: %w", r.ID, err)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("warehouse: commit job ads upsert: %w", err)
	}
	return total, nil
}
