package aggregate

import (
	"log"

	"arbetsdata/internal/reshape"
	"arbetsdata/internal/stat"
	"arbetsdata/internal/taxonomy"
)

// DispersionRow is one row of the income_dispersion table: the salary
// distribution for one occupation, sex and year. Suppressed percentiles
// stay nil.
type DispersionRow struct {
	SSYKCode   string
	GenderCode string
	Year       string
	Mean       *float64
	P10        *float64
	P25        *float64
	Median     *float64
	P75        *float64
	P90        *float64
}

// DispersionTable pivots dispersion observations into one row per
// (occupation, sex, year). Observations with unrecognized measure codes are
// dropped with a log line; a structurally unusable input yields an empty
// table rather than a partial one.
func DispersionTable(obs []stat.Observation, logger *log.Logger) []DispersionRow {
	if logger == nil {
		logger = log.Default()
	}
	measures := taxonomy.DispersionMeasures()

	renamed := make([]stat.Observation, 0, len(obs))
	dropped := 0
	for _, o := range obs {
		code := o.Dims["measure"]
		if !measures.Has(code) {
			dropped++
			continue
		}
		dims := make(map[string]string, len(o.Dims))
		for k, v := range o.Dims {
			dims[k] = v
		}
		dims["measure"] = measures.Resolve(code)
		renamed = append(renamed, stat.Observation{Dims: dims, Value: o.Value})
	}
	if dropped > 0 {
		logger.Printf("aggregate: dropped %d dispersion observations with unrecognized measure codes", dropped)
	}

	result := reshape.Pivot(renamed, []string{"ssyk_code", "gender_code", "year"}, "measure", reshape.FirstWins, logger)
	if !result.Pivoted() {
		logger.Printf("aggregate: dispersion input could not be pivoted, returning empty table")
		return []DispersionRow{}
	}

	out := make([]DispersionRow, 0, len(result.Wide))
	for _, w := range result.Wide {
		out = append(out, DispersionRow{
			SSYKCode:   w.Keys["ssyk_code"],
			GenderCode: w.Keys["gender_code"],
			Year:       w.Keys["year"],
			Mean:       w.Measures["mean"],
			P10:        w.Measures["p10"],
			P25:        w.Measures["p25"],
			Median:     w.Measures["median"],
			P75:        w.Measures["p75"],
			P90:        w.Measures["p90"],
		})
	}
	return out
}

// WeightedIncome computes the employee-weighted mean monthly salary over
// pivoted income rows. Rows with a missing salary are skipped; a missing
// employee count weighs the row at zero. Returns nil when no weight
// accumulates.
func WeightedIncome(rows []reshape.Wide) *float64 {
	var sum, weight float64
	for _, w := range rows {
		salary := w.Measures["monthly_salary"]
		if salary == nil {
			continue
		}
		employees := 0.0
		if n := w.Measures["num_employees"]; n != nil {
			employees = *n
		}
		sum += *salary * employees
		weight += employees
	}
	if weight == 0 {
		return nil
	}
	v := sum / weight
	return &v
}
