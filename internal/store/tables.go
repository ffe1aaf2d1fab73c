// Package store persists the processed tables as parquet files and reads
// them back for the query layer.
package store

import (
	"arbetsdata/internal/aggregate"
	"arbetsdata/internal/enrich"
	"arbetsdata/internal/source/jobads"
)

// Table names double as parquet file basenames under the data directory.
const (
	TableIncome            = "income"
	TableIncomeDispersion  = "income_dispersion"
	TableIncomeByAge       = "income_by_age"
	TableIncomeByEducation = "income_by_education"
	TableJobsDetail        = "jobs_detail"
	TableJobsAggregated    = "jobs_aggregated"
	TableTopEmployers      = "top_employers"
	TableSkills            = "skills"
)

// IncomeRow is one pivoted salary observation per region, occupation, sex
// and year. Suppressed measures stay null in the file.
type IncomeRow struct {
	Year              string   `parquet:"year"`
	RegionCode        string   `parquet:"region_code"`
	Region            string   `parquet:"region"`
	SSYKCode          string   `parquet:"ssyk_code"`
	Occupation        string   `parquet:"occupation"`
	GenderCode        string   `parquet:"gender_code"`
	Gender            string   `parquet:"gender"`
	MonthlySalary     *float64 `parquet:"monthly_salary,optional"`
	BasicSalary       *float64 `parquet:"basic_salary,optional"`
	NumEmployees      *float64 `parquet:"num_employees,optional"`
	GenderSalaryRatio *float64 `parquet:"gender_salary_ratio,optional"`
}

// DispersionRow is one salary distribution per occupation, sex and year.
type DispersionRow struct {
	Year       string   `parquet:"year"`
	SSYKCode   string   `parquet:"ssyk_code"`
	Occupation string   `parquet:"occupation"`
	GenderCode string   `parquet:"gender_code"`
	Gender     string   `parquet:"gender"`
	Mean       *float64 `parquet:"mean,optional"`
	P10        *float64 `parquet:"p10,optional"`
	P25        *float64 `parquet:"p25,optional"`
	Median     *float64 `parquet:"median,optional"`
	P75        *float64 `parquet:"p75,optional"`
	P90        *float64 `parquet:"p90,optional"`
}

// IncomeByAgeRow is one salary observation per occupation, sex, age group
// and year, whole country.
type IncomeByAgeRow struct {
	Year          string   `parquet:"year"`
	SSYKCode      string   `parquet:"ssyk_code"`
	Occupation    string   `parquet:"occupation"`
	GenderCode    string   `parquet:"gender_code"`
	Gender        string   `parquet:"gender"`
	AgeGroup      string   `parquet:"age_group"`
	MonthlySalary *float64 `parquet:"monthly_salary,optional"`
	NumEmployees  *float64 `parquet:"num_employees,optional"`
}

// IncomeByEducationRow is one salary observation per occupation, sex,
// education level and year, whole country.
type IncomeByEducationRow struct {
	Year           string   `parquet:"year"`
	SSYKCode       string   `parquet:"ssyk_code"`
	Occupation     string   `parquet:"occupation"`
	GenderCode     string   `parquet:"gender_code"`
	Gender         string   `parquet:"gender"`
	EducationLevel string   `parquet:"education_level"`
	MonthlySalary  *float64 `parquet:"monthly_salary,optional"`
	NumEmployees   *float64 `parquet:"num_employees,optional"`
}

// JobAdRow is one normalized job posting.
type JobAdRow struct {
	ID                  string `parquet:"id"`
	Headline            string `parquet:"headline"`
	SSYKCode            string `parquet:"ssyk_code"`
	OccupationLabel     string `parquet:"occupation_label"`
	OccupationConceptID string `parquet:"occupation_concept_id"`
	EmployerName        string `parquet:"employer_name"`
	EmployerOrgNumber   string `parquet:"employer_org_number"`
	Region              string `parquet:"region"`
	RegionCode          string `parquet:"region_code"`
	Municipality        string `parquet:"municipality"`
	MunicipalityCode    string `parquet:"municipality_code"`
	PublishedDate       string `parquet:"published_date"`
	LastApplicationDate string `parquet:"last_application_date"`
	NumberOfVacancies   int32  `parquet:"number_of_vacancies"`
	EmploymentType      string `parquet:"employment_type"`
	Duration            string `parquet:"duration"`
	WorkingHoursType    string `parquet:"working_hours_type"`
	RemoteWork          bool   `parquet:"remote_work"`
	DescriptionText     string `parquet:"description_text"`
}

// NewJobAdRow converts a fetched ad into its storage row.
func NewJobAdRow(ad jobads.JobAd) JobAdRow {
	return JobAdRow{
		ID:                  ad.ID,
		Headline:            ad.Headline,
		SSYKCode:            ad.SSYKCode,
		OccupationLabel:     ad.OccupationLabel,
		OccupationConceptID: ad.OccupationConceptID,
		EmployerName:        ad.EmployerName,
		EmployerOrgNumber:   ad.EmployerOrgNumber,
		Region:              ad.Region,
		RegionCode:          ad.RegionCode,
		Municipality:        ad.Municipality,
		MunicipalityCode:    ad.MunicipalityCode,
		PublishedDate:       ad.PublishedDate,
		LastApplicationDate: ad.LastApplicationDate,
		NumberOfVacancies:   int32(ad.NumberOfVacancies),
		EmploymentType:      ad.EmploymentType,
		Duration:            ad.Duration,
		WorkingHoursType:    ad.WorkingHoursType,
		RemoteWork:          ad.RemoteWork,
		DescriptionText:     ad.DescriptionText,
	}
}

// JobsAggregatedRow is one ad-count bucket per occupation, region and
// time period.
type JobsAggregatedRow struct {
	SSYKCode  string `parquet:"ssyk_code"`
	Region    string `parquet:"region"`
	Period    string `parquet:"period"`
	AdCount   int64  `parquet:"ad_count"`
	Vacancies int64  `parquet:"vacancies"`
}

func NewJobsAggregatedRow(b aggregate.RegionBucket) JobsAggregatedRow {
	return JobsAggregatedRow{
		SSYKCode:  b.SSYKCode,
		Region:    b.Region,
		Period:    b.Period,
		AdCount:   int64(b.AdCount),
		Vacancies: int64(b.Vacancies),
	}
}

// TopEmployerRow is one ranked employer.
type TopEmployerRow struct {
	Employer  string `parquet:"employer"`
	Region    string `parquet:"region"`
	AdCount   int64  `parquet:"ad_count"`
	Vacancies int64  `parquet:"vacancies"`
}

func NewTopEmployerRow(e aggregate.EmployerCount) TopEmployerRow {
	return TopEmployerRow{
		Employer:  e.Employer,
		Region:    e.Region,
		AdCount:   int64(e.AdCount),
		Vacancies: int64(e.Vacancies),
	}
}

// SkillRow is one aggregated skill mention per occupation group.
type SkillRow struct {
	SSYKCode        string  `parquet:"ssyk_code"`
	OccupationLabel string  `parquet:"occupation_label"`
	Skill           string  `parquet:"skill"`
	SkillType       string  `parquet:"skill_type"`
	Occurrences     int64   `parquet:"occurrences"`
	MeanProbability float64 `parquet:"mean_probability"`
}

func NewSkillRow(s enrich.SkillCount) SkillRow {
	return SkillRow{
		SSYKCode:        s.SSYKCode,
		OccupationLabel: s.OccupationLabel,
		Skill:           s.Skill,
		SkillType:       s.SkillType,
		Occurrences:     int64(s.Occurrences),
		MeanProbability: s.MeanProbability,
	}
}
