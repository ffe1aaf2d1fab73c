package pipeline

import (
	"context"

	"arbetsdata/internal/aggregate"
	"arbetsdata/internal/reshape"
	"arbetsdata/internal/source/scb"
	"arbetsdata/internal/stat"
	"arbetsdata/internal/store"
	"arbetsdata/internal/taxonomy"
)

// renameMeasures rewrites the measure dimension from SCB contents codes to
// canonical column names. Unknown codes pass through untouched; the age and
// education tables carry their own code vintages, so dropping would lose
// whole columns.
func renameMeasures(obs []stat.Observation) []stat.Observation {
	measures := taxonomy.Measures()
	out := make([]stat.Observation, 0, len(obs))
	for _, o := range obs {
		code, ok := o.Dims["measure"]
		if !ok || !measures.Has(code) {
			out = append(out, o)
			continue
		}
		dims := make(map[string]string, len(o.Dims))
		for k, v := range o.Dims {
			dims[k] = v
		}
		dims["measure"] = measures.Resolve(code)
		out = append(out, stat.Observation{Dims: dims, Value: o.Value})
	}
	return out
}

// measureValue looks up a pivoted measure by canonical name. When the name
// is absent and exactly one measure column exists, that lone column is
// assumed to be the monthly salary; the breakdown tables report it under a
// table-specific contents code.
func measureValue(w reshape.Wide, name string) *float64 {
	if v, ok := w.Measures[name]; ok {
		return v
	}
	if name == "monthly_salary" && len(w.Measures) == 1 {
		for _, v := range w.Measures {
			return v
		}
	}
	return nil
}

func (p *Pipeline) fetchIncome(ctx context.Context, opts Options) ([]store.IncomeRow, error) {
	cube, err := p.scb.Query(ctx, p.cfg.SCB.IncomeTable, scb.IncomeSelections(opts.SSYKCodes, opts.Years))
	if err != nil {
		return nil, err
	}

	obs := renameMeasures(stat.Decode(*cube, p.logger))
	result := reshape.Pivot(obs, []string{"year", "region_code", "ssyk_code", "gender_code"}, "measure", reshape.FirstWins, p.logger)
	if !result.Pivoted() {
		p.logger.Printf("pipeline=labor msg=\"income cube had no measure dimension, keeping zero rows\"")
		return []store.IncomeRow{}, nil
	}

	regions := taxonomy.Regions()
	genders := taxonomy.Genders()

	rows := make([]store.IncomeRow, 0, len(result.Wide))
	for _, w := range result.Wide {
		rows = append(rows, store.IncomeRow{
			Year:              w.Keys["year"],
			RegionCode:        w.Keys["region_code"],
			Region:            regions.Resolve(w.Keys["region_code"]),
			SSYKCode:          w.Keys["ssyk_code"],
			Occupation:        p.occupationLabel(w.Keys["ssyk_code"]),
			GenderCode:        w.Keys["gender_code"],
			Gender:            genders.Resolve(w.Keys["gender_code"]),
			MonthlySalary:     w.Measures["monthly_salary"],
			BasicSalary:       w.Measures["basic_salary"],
			NumEmployees:      w.Measures["num_employees"],
			GenderSalaryRatio: w.Measures["gender_salary_ratio"],
		})
	}

	if wm := aggregate.WeightedIncome(result.Wide); wm != nil {
		p.logger.Printf("pipeline=labor msg=\"income fetched\" rows=%d weighted_mean_salary=%.0f", len(rows), *wm)
	}
	return rows, nil
}

func (p *Pipeline) fetchDispersion(ctx context.Context, opts Options) ([]store.DispersionRow, error) {
	cube, err := p.scb.Query(ctx, p.cfg.SCB.DispersionTable, scb.DispersionSelections(opts.SSYKCodes, opts.Years))
	if err != nil {
		return nil, err
	}

	genders := taxonomy.Genders()

	table := aggregate.DispersionTable(stat.Decode(*cube, p.logger), p.logger)
	rows := make([]store.DispersionRow, 0, len(table))
	for _, d := range table {
		rows = append(rows, store.DispersionRow{
			Year:       d.Year,
			SSYKCode:   d.SSYKCode,
			Occupation: p.occupationLabel(d.SSYKCode),
			GenderCode: d.GenderCode,
			Gender:     genders.Resolve(d.GenderCode),
			Mean:       d.Mean,
			P10:        d.P10,
			P25:        d.P25,
			Median:     d.Median,
			P75:        d.P75,
			P90:        d.P90,
		})
	}
	return rows, nil
}

func (p *Pipeline) fetchIncomeByAge(ctx context.Context, opts Options) ([]store.IncomeByAgeRow, error) {
	cube, err := p.scb.Query(ctx, p.cfg.SCB.AgeTable, scb.AgeSelections(opts.SSYKCodes, opts.Years))
	if err != nil {
		return nil, err
	}

	obs := renameMeasures(stat.Decode(*cube, p.logger))
	result := reshape.Pivot(obs, []string{"year", "ssyk_code", "gender_code", "age_group"}, "measure", reshape.FirstWins, p.logger)
	if !result.Pivoted() {
		return []store.IncomeByAgeRow{}, nil
	}

	genders := taxonomy.Genders()

	rows := make([]store.IncomeByAgeRow, 0, len(result.Wide))
	for _, w := range result.Wide {
		rows = append(rows, store.IncomeByAgeRow{
			Year:          w.Keys["year"],
			SSYKCode:      w.Keys["ssyk_code"],
			Occupation:    p.occupationLabel(w.Keys["ssyk_code"]),
			GenderCode:    w.Keys["gender_code"],
			Gender:        genders.Resolve(w.Keys["gender_code"]),
			AgeGroup:      w.Keys["age_group"],
			MonthlySalary: measureValue(w, "monthly_salary"),
			NumEmployees:  measureValue(w, "num_employees"),
		})
	}
	return rows, nil
}

func (p *Pipeline) fetchIncomeByEducation(ctx context.Context, opts Options) ([]store.IncomeByEducationRow, error) {
	cube, err := p.scb.Query(ctx, p.cfg.SCB.EducationTable, scb.EducationSelections(opts.SSYKCodes, opts.Years))
	if err != nil {
		return nil, err
	}

	obs := renameMeasures(stat.Decode(*cube, p.logger))
	result := reshape.Pivot(obs, []string{"year", "ssyk_code", "gender_code", "education_level"}, "measure", reshape.FirstWins, p.logger)
	if !result.Pivoted() {
		return []store.IncomeByEducationRow{}, nil
	}

	genders := taxonomy.Genders()

	rows := make([]store.IncomeByEducationRow, 0, len(result.Wide))
	for _, w := range result.Wide {
		rows = append(rows, store.IncomeByEducationRow{
			Year:           w.Keys["year"],
			SSYKCode:       w.Keys["ssyk_code"],
			Occupation:     p.occupationLabel(w.Keys["ssyk_code"]),
			GenderCode:     w.Keys["gender_code"],
			Gender:         genders.Resolve(w.Keys["gender_code"]),
			EducationLevel: w.Keys["education_level"],
			MonthlySalary:  measureValue(w, "monthly_salary"),
			NumEmployees:   measureValue(w, "num_employees"),
		})
	}
	return rows, nil
}

// ESCO export filenames expected under the raw data directory. The ESCO
// portal gates its downloads behind a form, so these two CSVs are dropped
// in by hand; only the crosswalk workbook is fetched over HTTP.
const (
	escoOccupationsFile = "esco_occupations.csv"
	escoRelationsFile   = "esco_skill_relations.csv"
	crosswalkFile       = "ssyk2012_isco08.xlsx"
)

// buildEscoSkills derives a baseline skill set per occupation group from the
// ESCO exports: SSYK → ISCO via the crosswalk workbook, ISCO → skills via
// the skill universe. Rows carry skill_type "esco" and no ad statistics,
// keeping them distinguishable from enrichment-derived rows.
func (p *Pipeline) buildEscoSkills(ctx context.Context, opts Options) ([]store.SkillRow, error) {
	path, err := p.fetcher.Fetch(ctx, p.cfg.ESCO.CrosswalkURL, crosswalkFile)
	if err != nil {
		return nil, err
	}
	crosswalk, err := taxonomy.LoadCrosswalk(path)
	if err != nil {
		return nil, err
	}

	occupations, err := taxonomy.LoadEscoOccupations(p.fetcher.Path(escoOccupationsFile))
	if err != nil {
		return nil, err
	}
	relations, err := taxonomy.LoadEscoRelations(p.fetcher.Path(escoRelationsFile))
	if err != nil {
		return nil, err
	}
	universe := taxonomy.BuildSkillUniverse(occupations, relations, p.cfg.ESCO.RelationType)

	var rows []store.SkillRow
	for _, ssyk := range opts.SSYKCodes {
		seen := make(map[string]struct{})
		for _, isco := range crosswalk.Resolve(ssyk) {
			for _, skill := range universe.Skills(isco) {
				if _, dup := seen[skill]; dup {
					continue
				}
				seen[skill] = struct{}{}
				rows = append(rows, store.SkillRow{
					SSYKCode:        ssyk,
					OccupationLabel: p.occupationLabel(ssyk),
					Skill:           skill,
					SkillType:       "esco",
				})
			}
		}
	}
	p.logger.Printf("pipeline=labor msg=\"esco skill universe built\" groups=%d rows=%d", len(universe), len(rows))
	return rows, nil
}
