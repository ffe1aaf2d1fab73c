package dto

// IncomeResponse is one salary observation; suppressed measures serialize
// as null.
type IncomeResponse struct {
	Year              string   `json:"year"`
	RegionCode        string   `json:"region_code"`
	Region            string   `json:"region"`
	SSYKCode          string   `json:"ssyk_code"`
	Occupation        string   `json:"occupation"`
	GenderCode        string   `json:"gender_code"`
	Gender            string   `json:"gender"`
	MonthlySalary     *float64 `json:"monthly_salary"`
	BasicSalary       *float64 `json:"basic_salary"`
	NumEmployees      *float64 `json:"num_employees"`
	GenderSalaryRatio *float64 `json:"gender_salary_ratio"`
}

// DispersionResponse is one salary distribution row.
type DispersionResponse struct {
	Year       string   `json:"year"`
	SSYKCode   string   `json:"ssyk_code"`
	Occupation string   `json:"occupation"`
	GenderCode string   `json:"gender_code"`
	Gender     string   `json:"gender"`
	Mean       *float64 `json:"mean"`
	P10        *float64 `json:"p10"`
	P25        *float64 `json:"p25"`
	Median     *float64 `json:"median"`
	P75        *float64 `json:"p75"`
	P90        *float64 `json:"p90"`
}

// IncomeByAgeResponse is one salary row broken down by age group.
type IncomeByAgeResponse struct {
	Year          string   `json:"year"`
	SSYKCode      string   `json:"ssyk_code"`
	Occupation    string   `json:"occupation"`
	GenderCode    string   `json:"gender_code"`
	AgeGroup      string   `json:"age_group"`
	MonthlySalary *float64 `json:"monthly_salary"`
	NumEmployees  *float64 `json:"num_employees"`
}

// IncomeByEducationResponse is one salary row broken down by education
// level.
type IncomeByEducationResponse struct {
	Year           string   `json:"year"`
	SSYKCode       string   `json:"ssyk_code"`
	Occupation     string   `json:"occupation"`
	GenderCode     string   `json:"gender_code"`
	EducationLevel string   `json:"education_level"`
	MonthlySalary  *float64 `json:"monthly_salary"`
	NumEmployees   *float64 `json:"num_employees"`
}
