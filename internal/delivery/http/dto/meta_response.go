package dto

// OccupationResponse is one entry of the occupations listing.
type OccupationResponse struct {
	SSYKCode  string `json:"ssyk_code"`
	Label     string `json:"label"`
	AdCount   int    `json:"ad_count"`
	IncomeObs int    `json:"income_observations"`
}

// RegionResponse is one entry of the regions listing.
type RegionResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	AdCount int    `json:"ad_count"`
}

// StatsResponse summarizes the current dataset.
type StatsResponse struct {
	TableRows       map[string]int `json:"table_rows"`
	Years           []string       `json:"years"`
	SalaryMean      float64        `json:"salary_mean"`
	SalaryMedian    float64        `json:"salary_median"`
	SalaryMin       float64        `json:"salary_min"`
	SalaryMax       float64        `json:"salary_max"`
	DistinctSkills  int            `json:"distinct_skills"`
	UniqueEmployers int            `json:"unique_employers"`
	TopRegions      []string       `json:"top_regions"`
}

// HealthResponse reports service and dependency status.
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}
